package main

import (
	"net"
	"net/http"

	// Required for profiling
	_ "net/http/pprof"
)

// startProfileServer serves pprof on port until the process exits
func startProfileServer(port string) {
	spawn(func() {
		listenAddr := net.JoinHostPort("", port)
		log.Infof("Profile server listening on %s", listenAddr)
		profileRedirect := http.RedirectHandler("/debug/pprof", http.StatusSeeOther)
		http.Handle("/", profileRedirect)
		err := http.ListenAndServe(listenAddr, nil)
		log.Errorf("Profile server stopped: %s", err)
	})
}
