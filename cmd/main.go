package main

import (
	"context"
	"os"

	"NeoSync/internal/cli"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := cli.RootCommand().ExecuteContext(context.Background()); err != nil {
		logrus.WithError(err).Error("执行失败")
		os.Exit(1)
	}
}
