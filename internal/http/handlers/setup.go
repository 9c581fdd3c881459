package handlers

import (
	"sync"

	"rentalportal/internal/checkout"
	intconfig "rentalportal/internal/config"
)

var (
	setupMu  sync.RWMutex
	appEnv   intconfig.Env
	gateway  *checkout.Paystack
	sessions = checkout.NewManager()
)

// Configure wires the handler package to the loaded environment and the
// shared payment gateway. Call once during startup, before serving.
func Configure(env intconfig.Env, gw *checkout.Paystack) {
	setupMu.Lock()
	defer setupMu.Unlock()
	appEnv = env
	gateway = gw
}

func env() intconfig.Env {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return appEnv
}

func paymentGateway() *checkout.Paystack {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return gateway
}
