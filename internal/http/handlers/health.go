package handlers

import (
	"net/http"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	tpl := a.Partitioner.Template()
	a.json(w, http.StatusOK, map[string]any{
		"status": "ok",
		"template": map[string]any{
			"width":  tpl.Width,
			"height": tpl.Height,
			"scheme": tpl.Scheme,
			"policy": a.Partitioner.Policy(),
		},
	})
}
