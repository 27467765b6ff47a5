package serve

import (
	"context"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/caesium-cloud/gqlambda/api"
	"github.com/caesium-cloud/gqlambda/internal/app"
	"github.com/caesium-cloud/gqlambda/pkg/env"
	"github.com/caesium-cloud/gqlambda/pkg/log"
	"github.com/spf13/cobra"
)

const (
	usage   = "serve"
	short   = "Serve the Lambda handlers over local HTTP"
	long    = "This command runs the GraphQL and playground handlers behind a local HTTP server that frames requests like API Gateway"
	example = "gqlambda serve"
)

var (
	// Cmd is the serve command.
	Cmd = &cobra.Command{
		Use:        usage,
		Short:      short,
		Long:       long,
		Aliases:    []string{"dev"},
		SuggestFor: []string{"offline", "local", "http"},
		Example:    example,
		RunE:       serve,
	}
)

var cancel context.CancelFunc

func serve(cmd *cobra.Command, args []string) error {
	signalChan := make(chan os.Signal, 1)

	go func() {
		for s := range signalChan {
			switch s {
			case syscall.SIGUSR1:
				log.Info("dumping stack traces due to SIGUSR1 signal")
				if profile := pprof.Lookup("goroutine"); profile != nil {
					if err := profile.WriteTo(os.Stdout, 1); err != nil {
						log.Error("write goroutine profile", "error", err)
					}
				}
			case syscall.SIGINT, syscall.SIGTERM:
				log.Info("gracefully shutting down", "signal", s.String())
				shutdown()
			}
		}
	}()

	signal.Notify(signalChan, syscall.SIGUSR1, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalChan)

	ctx, cancelFunc := context.WithCancel(context.Background())
	cancel = cancelFunc
	defer shutdown()

	vars := env.Variables()

	srv, err := app.NewServer(vars)
	if err != nil {
		return err
	}

	log.Info(
		"spinning up api",
		"port", vars.Port,
		"endpoint", srv.Playground().Endpoint(),
		"playground", api.PlaygroundPath,
		"graphiql", api.GraphiQLPath,
	)

	return api.Start(ctx, srv, vars.Port)
}

func shutdown() {
	if cancel != nil {
		cancel()
	}
	if err := api.Shutdown(); err != nil {
		log.Error("api shutdown failure", "error", err)
	}
}
