// ABOUTME: Basic example showing catalog browsing with the bookshelf library
// ABOUTME: Demonstrates minimal configuration and common use cases

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	bookshelf "bookshelf-api/lib"
)

func main() {
	feedURL := os.Getenv("OPDS_FEED_URL")
	if feedURL == "" {
		feedURL = "http://localhost:8080/opds"
	}

	client, err := bookshelf.NewClient(
		bookshelf.WithFeedURL(feedURL),
		bookshelf.WithBaseURL(feedURL),
		bookshelf.WithCacheOption(bookshelf.CacheOption{Type: bookshelf.CacheTypeSQLite}),
		bookshelf.WithDefaultLogger(),
	)
	if err != nil {
		log.Fatal("Failed to create client:", err)
	}
	defer client.Close()

	ctx := context.Background()

	fmt.Println("=== Catalog ===")
	books, err := client.Books(ctx, "", bookshelf.WithPagination(1, 10))
	if err != nil {
		log.Fatalf("Error loading catalog: %v", err)
	}
	for _, b := range books {
		fmt.Printf("%-40s %s\n", b.Title, b.Author)
	}

	fmt.Println("\n=== Search: \"dune\" ===")
	results, err := client.Books(ctx, "dune")
	if err != nil {
		log.Printf("Search failed: %v\n", err)
	}
	for _, b := range results {
		fmt.Printf("%s (%s)\n", b.Title, b.DownloadURL)
	}

	if len(books) == 0 {
		return
	}

	first := books[0]
	if _, err := client.SaveProgress(ctx, first.ID, bookshelf.ProgressUpdate{Location: "epubcfi(/6/2)", Progress: 0.1}); err != nil {
		log.Printf("Saving progress failed: %v\n", err)
	}
	if err := client.AddToHistory(ctx, first.ID, first.Title, first.Author); err != nil {
		log.Printf("Updating history failed: %v\n", err)
	}

	fmt.Println("\n=== Continue reading ===")
	history, err := client.History(ctx)
	if err != nil {
		log.Printf("Loading history failed: %v\n", err)
	}
	for _, h := range history {
		fmt.Printf("%s, last read %s\n", h.BookTitle, h.LastRead.Format("2006-01-02 15:04"))
	}
}
