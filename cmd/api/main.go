package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog"
	"github.com/marcelsud/webhook-client/config"
	"github.com/marcelsud/webhook-client/internal/http/chi"
	"github.com/marcelsud/webhook-client/metrics"
	"github.com/marcelsud/webhook-client/routes"
	"github.com/marcelsud/webhook-client/secret"
	"github.com/marcelsud/webhook-client/webhook"
	whredis "github.com/marcelsud/webhook-client/webhook/redis"
)

const TIMEOUT = 30 * time.Second

/* “a porta de entrada e saída da minha aplicação”
* Porque a porta de entrada? É no arquivo main.go, que vai ser compilado para gerar o executável da aplicação,
* onde é feita toda a “amarração” dos demais pacotes.
* É nele onde iniciamos as dependências, fazemos as configurações e a invocação dos pacotes que desempenham a lógica de negócio.

* E porque ele é a porta de saída da aplicação?
* https://eltonminetto.dev/post/2022-07-06-error-handling-cli-applications-golang/
 */

/*
 * As importações devem ser feitas apenas em uma direção: para baixo. O aplicativo (api, cli) importa camadas de negócios,
 * que importam a camada de armazenamento
 */

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		return
	}
	logger := httplog.NewLogger("webhook-client", httplog.Options{
		JSON:     cfg.IsProduction(),
		LogLevel: cfg.LogLevel,
	})

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	loaderOpts := []routes.LoaderOption{routes.WithConfig(cfg)}
	if cfg.EncryptionKey != "" {
		cipher, err := secret.New(cfg.EncryptionKey)
		if err != nil {
			fmt.Println(err)
			return
		}
		loaderOpts = append(loaderOpts, routes.WithCipher(cipher))
	}
	loader := routes.NewLoader(loaderOpts...)
	if err := loader.Load(cfg.RoutesFile); err != nil {
		fmt.Println(err)
		return
	}
	logger.Info().Int("routes", len(loader.List())).Str("file", cfg.RoutesFile).Msg("routes loaded")

	// deliveries are only recorded when Redis is configured
	var (
		repo      webhook.Repository
		collector metrics.Collector
		store     chi.Pinger
		svcOpts   []webhook.ServiceOption
	)
	if cfg.RedisAddr != "" {
		redisRepo, err := whredis.NewRepository(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			fmt.Println(err)
			return
		}
		defer redisRepo.Close(context.Background())
		repo = redisRepo
		store = redisRepo
		collector = metrics.NewRedisCollector(redisRepo, loader)
		svcOpts = append(svcOpts, webhook.WithHealthStore(redisRepo))
	}

	exporter, err := metrics.NewOTelExporter(collector)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer exporter.Shutdown(context.Background())

	svcOpts = append(svcOpts,
		webhook.WithServiceLogger(logger),
		webhook.WithClientOptions(webhook.WithRecorder(exporter)),
	)
	s := webhook.NewService(loader, repo, svcOpts...)
	defer s.Close()

	r := chi.WebhookHandlers(ctx, logger, s, loader, store, exporter.Handler())
	http.Handle("/", r)
	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 4 * time.Minute,
		Addr:         ":" + cfg.Port,
		Handler:      http.DefaultServeMux,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)
	fmt.Printf("Listening on port %s\n", cfg.Port)
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		fmt.Println(err)
		return
	}
	err = <-errShutdown
	if err != nil {
		fmt.Println(err)
		return
	}
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		fmt.Printf("\nShutting down server...\n")
		errShutdown <- nil
	case context.DeadlineExceeded:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	default:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	}
}
