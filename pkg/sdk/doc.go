// Package shopassist is the embedded SDK: it wires the catalog store, the
// vector engine and the retrieval pipeline in-process, so Go programs can use
// the assistant without running the HTTP server.
//
// Minimal usage with the bundled catalog file and OpenAI:
//
//	client, err := shopassist.New(ctx,
//		shopassist.WithCatalogFile("data/products.json"),
//		shopassist.WithOpenAI(os.Getenv("OPENAI_API_KEY")),
//	)
//	if err != nil { ... }
//	defer client.Close()
//
//	answer, err := client.Ask(ctx, "something to light my desk", 2)
package shopassist
