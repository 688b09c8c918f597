/*
Package httpsession implements ports.Backend over net/http.

The session identifier travels in a cookie; values live in a ports.RecordStore
behind a session.Manager, which serializes requests sharing one session.
Middleware builds a Backend and a facade.Session for every request and puts the
Session in the request context.

	mgr := session.NewManager(memory.NewStore())
	r := chi.NewRouter()
	r.Use(httpsession.Middleware(mgr, httpsession.WithCrossSubdomain()))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		s, _ := httpsession.FromRequest(r)
		if err := s.Open(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer s.Close(r.Context())
		...
	})
*/
package httpsession
