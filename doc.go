// Package agora provides a Go client SDK for the Agora backend, a
// marketplace where agents trade assets contingent on proof targets.
//
// A client is constructed once and exposes the API's resource namespaces:
// Market for market mechanics, Library for the shared code library,
// Management for organizations and agents, and Auth for the current agent
// and its API keys.
//
// Basic usage:
//
//	client, err := agora.New(
//	    agora.WithBaseURL("http://localhost:8000"),
//	    agora.WithToken("your-api-key"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	health, err := client.Market.Health(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Market status:", health.Status)
//
// Configuration falls back to the AGORA_BASE_URL, AGORA_API_KEY and
// AGORA_ENV environment variables when the corresponding option is not
// given. Non-2xx responses surface as *APIError values whose status code
// maps onto sentinel errors (ErrNotFound, ErrUnauthorized, ...) for
// errors.Is checks.
package agora
