package main

import (
	"context"
	"fmt"

	"github.com/nqhuy/edusystem/core/post"
)

func (cli *commandLine) publish(ctx context.Context, content, subject string) error {
	cli.composer.SetContent(content)
	cli.composer.SetSubject(subject)

	p, err := cli.composer.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("posted %s\n", p.ID)
	return nil
}

func (cli *commandLine) comment(ctx context.Context, postID, content string) error {
	// the controller only comments on posts it has loaded
	if err := cli.feed.Refresh(ctx); err != nil {
		return err
	}
	for !cli.feed.Loaded(postID) && cli.feed.HasMore() {
		if err := cli.feed.LoadMore(ctx); err != nil {
			return err
		}
	}
	return cli.feed.CreateComment(ctx, postID, content)
}

func (cli *commandLine) react(ctx context.Context, postID, kind string) error {
	reaction := post.Reaction(kind)
	if !post.ValidReaction(reaction) {
		return fmt.Errorf("unknown reaction %q", kind)
	}
	return cli.feed.React(ctx, postID, reaction)
}
