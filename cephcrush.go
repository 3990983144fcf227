package main

import (
	"fmt"
	"os"
	"time"

	"github.com/LeeDigitalWorks/cephcrush/cmd"
	"github.com/LeeDigitalWorks/cephcrush/pkg/env"

	"github.com/getsentry/sentry-go"
)

func main() {
	err := sentry.Init(sentry.ClientOptions{
		Release:     "cephcrush@" + cmd.Version,
		Environment: env.Env,
		SampleRate:  1.0,
		Debug:       env.IsLocal() && os.Getenv("SENTRY_DEBUG") != "",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "sentry.Init: %v", err)
	}
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTags(cmd.VersionInfo())
	})
	// Flush buffered events before the program terminates.
	// Set the timeout to the maximum duration the program can afford to wait.
	defer sentry.Flush(2 * time.Second)

	cmd.Execute()
}
