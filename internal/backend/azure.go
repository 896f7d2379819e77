package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// AzureCognitiveServicesScope is the Entra ID scope of Azure OpenAI.
const AzureCognitiveServicesScope = "https://cognitiveservices.azure.com/.default"

// NewDefaultAzureCredential returns the Entra ID credential chain
// (environment, workload identity, managed identity, Azure CLI, ...).
func NewDefaultAzureCredential() (azcore.TokenCredential, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}
	return cred, nil
}

// azureBearer obtains an Entra ID access token for Azure OpenAI.
func azureBearer(ctx context.Context, cred azcore.TokenCredential) (string, error) {
	if cred == nil {
		return "", errors.New("azure backend needs an API key or a token credential")
	}

	token, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{AzureCognitiveServicesScope}})
	if err != nil {
		return "", fmt.Errorf("failed to get Azure access token: %w", err)
	}
	return "Bearer " + token.Token, nil
}
