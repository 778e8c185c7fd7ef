package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	devapi "github.com/nqhuy/edusystem/apps/devapi/echo"
	"github.com/nqhuy/edusystem/core"
	"github.com/nqhuy/edusystem/core/document"
	"github.com/nqhuy/edusystem/core/exam"
	"github.com/nqhuy/edusystem/core/post"
	"github.com/nqhuy/edusystem/core/user"
	logsvc "github.com/nqhuy/edusystem/services/logger"
)

var build = "develop"

func main() {
	addr := flag.String("addr", ":8000", "address to serve the dev API on")
	seed := flag.Bool("seed", true, "seed the stores with sample data")
	flag.Parse()

	conf := core.NewConfig(build)

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DEVAPI : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	core.InitValidators()
	post.InitValidators()
	user.InitValidators()

	store := devapi.NewStore()
	if *seed {
		seedStore(store)
	}

	server := devapi.NewServer(&devapi.Options{
		Address: *addr,
		Debug:   conf.Debug,
		Store:   store,
		Logger:  logger,
	})

	logger.Info(fmt.Sprintf("dev API listening on %s : version %q", *addr, conf.Build))
	go server.Start()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
	logger.Info("dev API stopped")
}

// seedStore drops in enough data to make the feed non-empty on first run.
func seedStore(store *devapi.Store) {
	teacher := store.EnsureUser("seed-teacher", "teacher@example.com", "Cô Hà")
	store.SetUserRole(teacher.UID, user.RoleTeacher)
	teacher, _ = store.GetUser(teacher.UID)
	student := store.EnsureUser("seed-student", "student@example.com", "Nam")

	p1 := store.CreatePost(post.NewPost{
		Content: "Ôn tập đạo hàm: ai cần tài liệu thì comment nhé!",
		Subject: "toan",
	}, teacher)
	store.CreatePost(post.NewPost{
		Content:     "Có ai giải được bài sóng cơ đề thi thử không?",
		Subject:     "ly",
		HasQuestion: true,
	}, student)
	store.CreateComment(p1.ID, post.NewComment{Content: "Em cần ạ!"}, student)

	store.CreateExam(exam.NewExam{
		Title:          "Thi thử THPT môn Toán",
		Subject:        "toan",
		Duration:       90,
		QuestionsCount: 50,
		Difficulty:     exam.DifficultyMedium,
	})
	store.CreateDocument(document.NewDocument{
		Title:    "Chuyên đề hình học không gian",
		Category: "on-thi",
		Subject:  "toan",
		FileType: "application/pdf",
		FileSize: 1 << 20,
		Author:   teacher.Name,
	})
}
