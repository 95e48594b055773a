// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"log"

	"github.com/google/wire"
	"go.uber.org/zap"

	"microtask_gateway/internal/admin"
	"microtask_gateway/internal/app"
	"microtask_gateway/internal/auth"
	"microtask_gateway/internal/config"
	"microtask_gateway/internal/dashboard"
	"microtask_gateway/internal/guard"
	"microtask_gateway/internal/identity"
	"microtask_gateway/internal/imagehost"
	"microtask_gateway/internal/jobs"
	"microtask_gateway/internal/notification"
	"microtask_gateway/internal/payment"
	"microtask_gateway/internal/platform/logger"
	"microtask_gateway/internal/profile"
	"microtask_gateway/internal/session"
	"microtask_gateway/internal/submission"
	"microtask_gateway/internal/task"
	"microtask_gateway/internal/upstream"
	"microtask_gateway/internal/withdrawal"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		provideCleanup,

		// Identity & Sessions
		session.NewStore,
		identity.NewToolkitClient,
		identity.NewFirebaseVerifier,
		wire.Bind(new(identity.Verifier), new(*identity.FirebaseVerifier)),
		identity.NewService,

		// Authenticated upstream client and its guard-side event sink
		guard.NewNotifier,
		wire.Bind(new(upstream.TokenMinter), new(*identity.Service)),
		wire.Bind(new(upstream.AuthEvents), new(*guard.Notifier)),
		upstream.NewClient,

		// Role resolution and route guarding
		profile.NewResolver,
		guard.NewGuard,

		// Feature modules
		auth.NewGoogleService,
		auth.NewHandler,
		dashboard.NewHandler,
		task.NewClient,
		task.NewService,
		task.NewHandler,
		submission.NewClient,
		submission.NewService,
		submission.NewHandler,
		withdrawal.NewClient,
		withdrawal.NewService,
		withdrawal.NewHandler,
		payment.NewClient,
		payment.NewService,
		payment.NewHandler,
		notification.NewClient,
		notification.NewHandler,
		admin.NewClient,
		admin.NewService,
		admin.NewHandler,
		imagehost.NewService,
		imagehost.NewHandler,
		jobs.NewSessionExpiryJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}

func provideCleanup(logger *zap.Logger) func() {
	return func() {
		logger.Info("Executing cleanup tasks...")
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
		log.Println("Cleanup finished.")
	}
}
