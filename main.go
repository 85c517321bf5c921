package main

import (
	"adminboard/account"
	"adminboard/authority"
	"adminboard/bizerror"
	"adminboard/common"
	"adminboard/infra/tracing"
	"adminboard/notify"
	"adminboard/persistence"
	"adminboard/servehttp"
	"adminboard/session"
	"adminboard/sessions"
	"adminboard/token"
	"adminboard/ws"
	"context"
	"log"
	"net/http"
	"os"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("service start")

	tracingCloser, err := tracing.Bootstrap(common.GetServiceName())
	if err != nil {
		log.Fatalf("tracing bootstrap failed %v\n", err)
	}
	defer tracingCloser.Close()

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(context.Background()).AutoMigrate(
		&account.User{},
		&authority.Role{}, &authority.Permission{},
		&authority.UserRoleBinding{}, &authority.RolePermissionBinding{},
		&notify.Notification{}).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	if err := account.DefaultSecurityConfiguration(); err != nil {
		log.Fatalf("failed to prepare default security configuration %v\n", err)
	}

	tokenConfig, err := token.ConfigFromEnv()
	if err != nil {
		log.Fatalf("parse token config failed %v\n", err)
	}
	codec, err := token.NewCodec(tokenConfig)
	if err != nil {
		log.Fatalf("token codec setup failed %v\n", err)
	}
	token.DefaultCodec = codec

	// PERM_PROFILE=memory serves a fixed grant table instead of walking the
	// role bindings, for demo and local debugging.
	if os.Getenv("PERM_PROFILE") == "memory" {
		authority.ActiveResolver = authority.NewInMemoryPermResolver(map[types.ID][]string{
			1: {"user:manage", "role:manage", "permission:manage", "notification:announce"},
		})
	}

	registry := ws.NewRegistry()
	dispatcher := notify.NewDispatcher(registry)

	engine := gin.Default()
	engine.Use(tracing.TracingIngress(), bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, common.GetServiceName())
	})

	sessions.RegisterSessionsHandler(engine)
	sessions.RegisterSessionHandler(engine, session.JwtAuthFilter())
	notify.RegisterNotificationHandler(engine, dispatcher, session.JwtAuthFilter())
	ws.RegisterNotificationWsHandler(engine, registry, dispatcher)

	servehttp.StartHTTPServer(":80", engine)
}
