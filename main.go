package main

import (
	"context"
	"time"

	"github.com/KeremAR/notification-service/config"
	"github.com/KeremAR/notification-service/consumer"
	"github.com/KeremAR/notification-service/controllers"
	"github.com/KeremAR/notification-service/mailer"
	"github.com/KeremAR/notification-service/metrics"
	"github.com/KeremAR/notification-service/models"
	"github.com/KeremAR/notification-service/publisher"
	"github.com/KeremAR/notification-service/repos"
	"github.com/KeremAR/notification-service/server"
	"github.com/KeremAR/notification-service/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
)

func main() {

	opts := []fx.Option{}
	opts = append(opts, provideOptions()...)
	opts = append(opts, fx.Invoke(run))

	app := fx.New(opts...)

	app.Run()
}

func provideOptions() []fx.Option {
	return []fx.Option{
		fx.Invoke(utils.ConfigureLogger),
		fx.Provide(config.Parse),
		fx.Invoke(func(config *config.Config) {
			utils.InitSharedConstants(*utils.ParsePublicKey(config.JwtPublicKey))
		}),
		fx.Provide(config.ProvidePostgres),
		fx.Provide(config.ProvideSmtp),
		fx.Provide(config.ProvideRedis),
		fx.Provide(server.CreateServer),
		fx.Provide(utils.GetDefaultRouter),
		fx.Invoke(models.InitSchema),
		fx.Provide(repos.NewNotificationRepo),
		fx.Provide(publisher.NewLifecyclePublisher),
		fx.Provide(mailer.NewMailer),
		fx.Provide(func(repo *repos.NotificationRepo, pub *publisher.LifecyclePublisher) *controllers.NotificationsController {
			return controllers.NewNotificationsController(repo, pub)
		}),
		fx.Provide(func(c *config.Config, repo *repos.NotificationRepo, m *mailer.Mailer, pub *publisher.LifecyclePublisher) (*consumer.Consumer, error) {
			return consumer.New(c, repo, m, pub)
		}),
		fx.Invoke(controllers.RegisterNotificationsController),
		fx.Invoke(metrics.RegisterMetricsHandler),
		fx.Invoke(runConsumer),
	}
}

func run(app *fiber.App, config *config.Config, lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			errChan := make(chan error)

			go func() {
				errChan <- app.Listen(config.Port)
			}()

			select {
			case err := <-errChan:
				return err
			case <-time.After(100 * time.Millisecond):
				return nil
			}
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

func runConsumer(c *consumer.Consumer, lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return c.Start()
		},
		OnStop: func(ctx context.Context) error {
			c.Shutdown()
			return nil
		},
	})
}
