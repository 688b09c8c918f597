/*
Package facet is a namespaced session facade for net/http servers.

A facade.Session is built per request around a ports.Backend. It must be opened
before use and closed (or destroyed) afterwards; values are stored under a key
prefix ("fSession::" by default) so several components can share one session
without colliding.

# Usage

	f, err := facet.New(
		facet.WithStore(memory.NewStore()),
		facet.WithCrossSubdomain(),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s, _ := httpsession.FromRequest(r)
		if err := s.Open(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer s.Close(r.Context())

		n, _ := s.Get("visits", 0.0)
		_ = s.Set("visits", n.(float64)+1)
	})
	http.ListenAndServe(":8080", f.Middleware()(mux))

# Storage

Records live in a ports.RecordStore: in memory (pkg/adapters/memory), in Redis
(pkg/adapters/redis, which also provides a distributed lock for multi-instance
deployments) or any custom implementation verified with ports.RunRecordStoreContract.
WithEncryption seals values at rest with AES-GCM.

# Concurrency

Requests sharing a session are serialized: opening a session takes its lock and
closing releases it. httpsession.Middleware closes any session a handler left open.
*/
package facet
