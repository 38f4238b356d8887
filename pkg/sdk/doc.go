// Package skinrec embeds the skincare knowledge search and product
// recommendation engine in a Go program, without the HTTP server.
//
//	client, _ := skinrec.New(ctx,
//	    skinrec.WithEmbedder(myEmbedder),
//	    skinrec.WithKnowledgeDir("data/knowledge_base"),
//	    skinrec.WithCatalog("data/all_products.json", "data/elder_products.json"),
//	)
//	defer client.Close()
//
//	hits, _ := client.Search(ctx, "脸上长痘怎么办", skinrec.SearchOptions{Category: "skin_conditions"})
//	set, _ := client.RecommendText(ctx, "我是女生，28岁，混合性皮肤，毛孔粗大")
//
// Without an embedder every text maps to the zero vector: search still
// answers, just without semantic ranking.
package skinrec
