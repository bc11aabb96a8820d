// Package newsrec embeds the newsrec content recommendation engine in a Go program.
//
// The client stores articles and user interactions in Valkey, Redis or an embedded
// SQLite database and answers two questions over a TF-IDF model of the corpus:
// which articles read like this one, and what should this reader see next.
//
//	client, _ := newsrec.New(ctx, newsrec.WithSQLite("news.db"))
//	defer client.Close()
//
//	_, _ = client.Documents().Upsert(ctx, newsrec.Document{
//	    ID:          "42",
//	    Title:       "Rust in the kernel",
//	    Body:        "...",
//	    Status:      newsrec.StatusActive,
//	    PublishedAt: time.Now(),
//	})
//	_ = client.Interactions().Record(ctx, "alice", "42", newsrec.KindComment)
//
//	similar, _ := client.Similar(ctx, "42", 5)
//	picks, _ := client.Recommend(ctx, "alice", 5)
//	if len(picks) == 0 {
//	    picks, _ = client.Popular(ctx, 5)
//	}
//
// The engine snapshot is rebuilt lazily after document writes; WithMaxAge bounds
// how stale it may get when other processes write to the same store.
package newsrec
