package main

import (
	"log"
	"os"

	"github.com/nqhuy/edusystem/core"
	"github.com/nqhuy/edusystem/core/feed"
	"github.com/nqhuy/edusystem/core/post"
	"github.com/nqhuy/edusystem/core/user"
	firebasesvc "github.com/nqhuy/edusystem/services/firebase"
	logsvc "github.com/nqhuy/edusystem/services/logger"
	"github.com/nqhuy/edusystem/services/rest"
)

var build = "develop"

func main() {
	defer os.Exit(0)

	conf := core.NewConfig(build)

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "FEED : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	core.InitValidators()
	post.InitValidators()
	user.InitValidators()

	auth := firebasesvc.NewService(conf, logger)
	api := rest.NewClient(conf, auth, logger)

	posts := rest.NewPostClient(api)
	comments := rest.NewCommentClient(api)
	uploads := rest.NewUploadClient(api)

	lister := feed.NewFallbackLister(
		feed.NewEnhancedLister(posts),
		feed.NewBasicLister(posts),
		conf.API.ListTimeout,
	)

	notifier := core.ConsoleNotifier{}
	controller := feed.NewController(feed.Deps{
		Lister:   lister,
		Posts:    posts,
		Comments: comments,
		Session:  auth,
		Notifier: notifier,
		Logger:   logger,
		PageSize: conf.API.PageSize,
	})

	cli := commandLine{
		auth:     auth,
		feed:     controller,
		composer: feed.NewComposer(posts, uploads, controller, notifier),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			log.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
