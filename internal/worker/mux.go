// Package worker wraps asynq's ServeMux for the background side of the
// service: metadata extraction (extract:info), media downloads
// (download:video), and deferred artifact deletion (delete:thumbnail,
// delete:media). Handlers are registered in cmd/main.go and served by the
// asynq server alongside the HTTP process.
package worker

import (
	"context"

	"github.com/hibiken/asynq"
)

type Mux struct{ mux *asynq.ServeMux }

func NewMux() *Mux { return &Mux{mux: asynq.NewServeMux()} }

func (m *Mux) HandleFunc(t string, h func(ctx context.Context, task *asynq.Task) error) {
	m.mux.HandleFunc(t, h)
}

func (m *Mux) Mux() *asynq.ServeMux { return m.mux }
