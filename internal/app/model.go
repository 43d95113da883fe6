package app

import (
	"context"
	"fmt"

	"github.com/parlavoce/parla/internal/event"
	"github.com/parlavoce/parla/internal/fsm"
	"github.com/parlavoce/parla/internal/model"
)

// ensureModel puts the pipeline on the path to a loaded transcriber:
// straight to load when the artifact exists, through a streamed
// download when it does not.
func (a *App) ensureModel(ctx context.Context) {
	if model.Exists(a.modelDir, a.modelName) {
		a.loadModel(ctx)
		return
	}

	a.logger.Info("model not found, starting download",
		"dir", a.modelDir, "model", a.modelName)
	a.setStatus(fsm.StatusModelDownloading)

	bus := a.bus
	dir, name := a.modelDir, a.modelName
	a.runtime.Go(ctx, "download-model",
		func(taskCtx context.Context) error {
			err := model.Download(taskCtx, dir, name, func(downloaded, total int64) {
				bus.TrySend(event.ModelDownloadProgress{Downloaded: downloaded, Total: total})
			})
			if err != nil {
				return err
			}
			return bus.Send(taskCtx, event.ModelDownloadComplete{})
		},
		func(err error) {
			a.sendError(ctx, fmt.Sprintf("model download failed: %v", err))
		},
	)
}

// loadModel runs the blocking model load and hands the context back
// through the event union.
func (a *App) loadModel(ctx context.Context) {
	a.logger.Info("loading model", "model", a.modelName)
	a.setStatus(fsm.StatusProcessing)

	bus := a.bus
	dir, name := a.modelDir, a.modelName
	a.runtime.GoBlocking(ctx, "load-model",
		func(taskCtx context.Context) error {
			loaded, err := model.Load(dir, name)
			if err != nil {
				return err
			}
			return bus.Send(taskCtx, event.ModelReady{Context: loaded})
		},
		func(err error) {
			a.sendError(ctx, fmt.Sprintf("load model failed: %v", err))
		},
	)
}
