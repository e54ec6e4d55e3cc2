package stress

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yudhasubki/spinlock/pkg/core"
	httpresponse "github.com/yudhasubki/spinlock/pkg/http"
	"github.com/yudhasubki/spinlock/pkg/io"
)

type Http struct {
	Service  *Service
	Gatherer prometheus.Gatherer
}

func (h *Http) Router() http.Handler {
	r := chi.NewRouter()

	gatherer := h.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/runs", func(r chi.Router) {
		r.Get("/", h.GetRuns)
		r.Post("/", h.CreateRun)
		r.Get("/{runId}", h.GetRun)
	})

	return r
}

func (h *Http) CreateRun(w http.ResponseWriter, r *http.Request) {
	var request io.Run

	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		slog.Error("[CreateRun] error decode request", LogPrefixErr, err)
		httpresponse.WriteError(w, http.StatusBadRequest, err)
		return
	}

	err = request.Validate()
	if err != nil {
		httpresponse.WriteError(w, http.StatusBadRequest, err)
		return
	}

	run, err := h.Service.Execute(r.Context(), request)
	if err != nil {
		httpresponse.WriteError(w, http.StatusInternalServerError, err)
		return
	}

	httpresponse.Write(w, http.StatusOK, &httpresponse.Response{
		Message: httpresponse.MessageSuccess,
		Data:    io.ResponseRun{Run: run, Passed: run.Passed()},
	})
}

func (h *Http) GetRuns(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		httpresponse.WriteError(w, http.StatusBadRequest, err)
		return
	}

	runs, err := h.Service.Runs(r.Context(), filter)
	if err != nil {
		httpresponse.WriteError(w, http.StatusInternalServerError, err)
		return
	}

	httpresponse.Write(w, http.StatusOK, &httpresponse.Response{
		Message: httpresponse.MessageSuccess,
		Data:    io.NewResponseRuns(runs),
	})
}

func (h *Http) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "runId"))
	if err != nil {
		httpresponse.WriteError(w, http.StatusBadRequest, err)
		return
	}

	run, err := h.Service.Run(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, ErrRunNotFound) {
			code = http.StatusNotFound
		}
		httpresponse.WriteError(w, code, err)
		return
	}

	httpresponse.Write(w, http.StatusOK, &httpresponse.Response{
		Message: httpresponse.MessageSuccess,
		Data:    io.ResponseRun{Run: run, Passed: run.Passed()},
	})
}

func parseFilter(r *http.Request) (core.FilterRun, error) {
	var (
		query  = r.URL.Query()
		filter = core.FilterRun{
			SortBy:        query.Get("sort_by"),
			SortDirection: query.Get("sort_direction"),
		}
	)

	if strategies := query.Get("strategy"); strategies != "" {
		for _, name := range strings.Split(strategies, ",") {
			strategy, err := core.ParseStrategy(strings.TrimSpace(name))
			if err != nil {
				return filter, err
			}
			filter.Strategy = append(filter.Strategy, strategy)
		}
	}

	if failed := query.Get("failed"); failed != "" {
		v, err := strconv.ParseBool(failed)
		if err != nil {
			return filter, err
		}
		filter.Failed = v
	}

	for key, dst := range map[string]*int{"page": &filter.Offset, "limit": &filter.Limit} {
		v := query.Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, errors.New("invalid " + key + ": " + v)
		}
		*dst = n
	}

	if err := filter.Validate(); err != nil {
		return filter, err
	}

	return filter, nil
}
