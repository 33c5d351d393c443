// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/domreg/domreg.go/cache/memory"
	"github.com/domreg/domreg.go/cache/redis"
	"github.com/domreg/domreg.go/core"
	"github.com/sirupsen/logrus"

	_ "github.com/domreg/domreg.go/hosting/github"
	_ "github.com/domreg/domreg.go/zone/cloudflare"
)

var (
	doValidate = flag.Bool("validate", false, "Validate a domain data file.")
	doCheck    = flag.Bool("check", false, "Check subdomain availability and registrability.")
	doRegister = flag.Bool("register", false, "Register a subdomain via pull request.")
	doList     = flag.Bool("list", false, "List registered subdomains.")

	file       = flag.String("file", "", "Domain data JSON file location.")
	subdomain  = flag.String("subdomain", "", "Subdomain to operate on.")
	handle     = flag.String("handle", "", "Account handle for ownership checks and listings.")
	token      = flag.String("token", "", "User-scoped hosting API token.")
	screenshot = flag.String("screenshot", "", "Screenshot file to attach to the registration.")

	parentDomain  = flag.String("parent-domain", "is-a.dev", "Parent domain served by the registry.")
	upstreamOwner = flag.String("upstream-owner", "is-a-dev", "Upstream registry repository owner.")
	upstreamRepo  = flag.String("upstream-repo", "register", "Upstream registry repository name.")
	mirrorHost    = flag.String("mirror-host", "raw.is-a.dev", "Reserved mirror hostname that must never be proxied.")

	redisAddr = flag.String("redis-addr", "", "Redis address for the read cache. Empty uses an in-process cache.")
	redisIdx  = flag.Int("redis-db", 0, "Redis database index.")

	cfToken = flag.String("cf-token", "", "Cloudflare API token for the live-zone cross-check.")
	cfZone  = flag.String("cf-zone", "", "Cloudflare zone name for the live-zone cross-check.")

	debug = flag.Bool("debug", false, "Enable debug logging.")

	signalC = make(chan os.Signal, 1)
)

func main() {
	flag.Parse()

	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	signal.Notify(signalC, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-signalC
		cancel()
	}()

	var err error

	switch {
	case *doValidate:
		err = _validate()
	case *doCheck:
		err = _check(ctx)
	case *doRegister:
		err = _register(ctx)
	case *doList:
		err = _list(ctx)
	default:
		flag.Usage()
	}
	if err != nil {
		logrus.Fatal(err)
	}
}

func registryConfig() core.RegistryConfig {
	return core.RegistryConfig{
		UpstreamOwner: *upstreamOwner,
		UpstreamRepo:  *upstreamRepo,
		ParentDomain:  *parentDomain,
		DomainsDir:    "domains",
	}
}

func policy() core.Policy {
	return core.Policy{ReservedMirrorHost: *mirrorHost}
}

// buildHosting constructs the hosting adapter. Read-only modes fall back to
// anonymous access when no token is given; registration never does.
func buildHosting(requireToken bool) (core.Hosting, error) {
	build := core.HostingBuilders["github"]

	if *token == "" && !requireToken {
		return build(map[string]string{"anonymous": "true"})
	}
	return build(map[string]string{"token": *token})
}

func buildCache(ctx context.Context) core.Cache {
	if *redisAddr == "" {
		return memory.New(5 * time.Minute)
	}

	c, err := redis.New(ctx, *redisAddr, *redisIdx)
	if err != nil {
		logrus.WithError(err).Warn("redis unavailable, falling back to in-process cache")
		return memory.New(5 * time.Minute)
	}
	return c
}

func buildZoneChecker() core.ZoneChecker {
	if *cfToken == "" || *cfZone == "" {
		return nil
	}

	zc, err := core.ZoneCheckerBuilders["cloudflare"](map[string]string{
		"api_token": *cfToken,
		"zone":      *cfZone,
	})
	if err != nil {
		logrus.WithError(err).Warn("live-zone checker unavailable")
		return nil
	}
	return zc
}
