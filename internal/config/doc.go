// Package config loads mcpagent configuration.
//
// Values come from four layers, later layers winning:
//
//  1. Built-in defaults (GetDefaultConfig)
//  2. An optional YAML file (--config)
//  3. The process environment
//  4. A dotenv file (--env-file, default .env), which overrides the process
//     environment
//
// # File Format
//
//	auth:
//	  realmURL: https://keycloak.example.com/realms/expenses
//	mcp:
//	  url: https://expenses.example.com/mcp/
//	keepalive:
//	  enabled: true
//	backend:
//	  host: ollama
//	  ollama:
//	    model: llama3.1:latest
//
// Secrets (API keys, tokens) are only read from the environment and are never
// serialized back to YAML.
//
// # Environment
//
// KEYCLOAK_REALM_URL enables authentication. MCP_SERVER_URL selects the tool
// endpoint. RUNNING_IN_PRODUCTION=true keeps the process alive after the
// request. API_HOST selects the chat backend (azure, github, ollama, openai);
// unknown values fall back to openai.
package config
