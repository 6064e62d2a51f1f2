/*
Package hello is a minimal web application: a single route answering
"Hello World!", guarded by cross-site request forgery (CSRF) protection and
served by a development server on 0.0.0.0:8000.

# Concept

The application object is built once from a config.Config, then run. The
router, the CSRF middleware and the server loop are provided by chi,
gorilla/csrf and net/http; this package only wires them together.

The CSRF signing key comes from the configured secret, from Redis when
replicas must share it, or from process memory otherwise.

# Usage

	package main

	import (
		"context"
		"log"
		"os"
		"os/signal"

		"github.com/aretw0/hello"
		"github.com/aretw0/hello/pkg/config"
	)

	func main() {
		cfg, err := config.Load("")
		if err != nil {
			log.Fatal(err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		app, err := hello.New(ctx, cfg)
		if err != nil {
			log.Fatal(err)
		}
		if err := app.Run(ctx); err != nil {
			log.Fatal(err)
		}
	}
*/
package hello
