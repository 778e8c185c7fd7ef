package main

import (
	"context"
	"fmt"

	"github.com/nqhuy/edusystem/core/feed"
)

func (cli *commandLine) list(ctx context.Context, subject, search string, pages int) error {
	if err := cli.feed.SetSubject(ctx, subject); err != nil {
		return err
	}
	if search != "" {
		if err := cli.feed.SetSearch(ctx, search); err != nil {
			return err
		}
	}
	if cli.feed.State() == feed.StateIdle {
		if err := cli.feed.Refresh(ctx); err != nil {
			return err
		}
	}
	for page := 1; page < pages && cli.feed.HasMore(); page++ {
		if err := cli.feed.LoadMore(ctx); err != nil {
			return err
		}
	}

	posts := cli.feed.Posts()
	if len(posts) == 0 {
		fmt.Println("no posts")
		return nil
	}
	for _, p := range posts {
		subjectTag := p.Subject
		if subjectTag == "" {
			subjectTag = "-"
		}
		fmt.Printf("%s  [%s]  %s (%s)\n", p.CreatedAt.Format("2006-01-02 15:04"), subjectTag, p.AuthorName, p.AuthorRole)
		fmt.Printf("    %s\n", p.Content)
		fmt.Printf("    id=%s likes=%d comments=%d\n", p.ID, p.Likes, p.Comments)
	}
	return nil
}
