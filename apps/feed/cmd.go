package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/nqhuy/edusystem/core/feed"
	firebasesvc "github.com/nqhuy/edusystem/services/firebase"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	auth     *firebasesvc.Service
	feed     *feed.Controller
	composer *feed.Composer
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  list [-subject SUBJECT] [-search TEXT] [-pages N] - load and print the feed")
	fmt.Println("  post -content TEXT [-subject SUBJECT]             - publish a post")
	fmt.Println("  comment -post ID -content TEXT                    - comment on a post")
	fmt.Println("  react -post ID -kind KIND                         - react to a post")
	fmt.Println()
	fmt.Println("Credentials are read from EDUSYSTEM_EMAIL and EDUSYSTEM_PASSWORD;")
	fmt.Println("a missing password is prompted for. Listing works without signing in.")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	listSubject := listCmd.String("subject", "all", "subject filter")
	listSearch := listCmd.String("search", "", "full-text search")
	listPages := listCmd.Int("pages", 1, "number of pages to load")

	postCmd := flag.NewFlagSet("post", flag.ExitOnError)
	postContent := postCmd.String("content", "", "post content")
	postSubject := postCmd.String("subject", "toan", "post subject")

	commentCmd := flag.NewFlagSet("comment", flag.ExitOnError)
	commentPost := commentCmd.String("post", "", "post ID")
	commentContent := commentCmd.String("content", "", "comment content")

	reactCmd := flag.NewFlagSet("react", flag.ExitOnError)
	reactPost := reactCmd.String("post", "", "post ID")
	reactKind := reactCmd.String("kind", "idea", "reaction kind: idea, thinking, resource or motivation")

	ctx := context.Background()

	switch args[1] {
	case "list":
		if err := listCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.list(ctx, *listSubject, *listSearch, *listPages)
	case "post":
		if err := postCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *postContent == "" {
			postCmd.Usage()
			return errHelp
		}
		if err := cli.signIn(ctx); err != nil {
			return err
		}
		return cli.publish(ctx, *postContent, *postSubject)
	case "comment":
		if err := commentCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *commentPost == "" || *commentContent == "" {
			commentCmd.Usage()
			return errHelp
		}
		if err := cli.signIn(ctx); err != nil {
			return err
		}
		return cli.comment(ctx, *commentPost, *commentContent)
	case "react":
		if err := reactCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *reactPost == "" {
			reactCmd.Usage()
			return errHelp
		}
		if err := cli.signIn(ctx); err != nil {
			return err
		}
		return cli.react(ctx, *reactPost, *reactKind)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) signIn(ctx context.Context) error {
	email := os.Getenv("EDUSYSTEM_EMAIL")
	if email == "" {
		return errors.New("EDUSYSTEM_EMAIL must be set")
	}
	password := os.Getenv("EDUSYSTEM_PASSWORD")
	if password == "" {
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			return errors.New("a password is required")
		}
		password = string(pwd)
	}
	return cli.auth.SignIn(ctx, email, password)
}
