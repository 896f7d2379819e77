// Package oauth acquires bearer credentials from a Keycloak-style realm.
//
// Acquisition is a fixed two-step sequence, each step a single attempt:
//
//  1. Dynamic client registration (RFC 7591) at
//     {realm}/clients-registrations/openid-connect, producing a ClientIdentity.
//  2. The client-credentials grant at {realm}/protocol/openid-connect/token,
//     producing an oauth2.Token.
//
// HeaderBuilder ties the two together. Without a realm URL it yields no
// headers and makes no requests; with one it either returns
// {"Authorization": "Bearer <token>"} or the first error encountered.
//
// Tokens are neither cached nor refreshed.
//
//	builder := oauth.NewHeaderBuilder(os.Getenv("KEYCLOAK_REALM_URL"))
//	headers, err := builder.BuildHeaders(ctx)
package oauth
