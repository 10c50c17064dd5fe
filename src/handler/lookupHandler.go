package handler

import (
	"context"
	"net/http"

	logger "github.com/sirupsen/logrus"
)

type accountLister interface {
	ListAccounts(ctx context.Context) ([]string, error)
}

type symbolLister interface {
	ListSymbols(ctx context.Context) ([]string, error)
}

func AccountsHandler(repo accountLister) http.HandlerFunc {
	return listHandler("accounts", repo.ListAccounts)
}

func SymbolsHandler(repo symbolLister) http.HandlerFunc {
	return listHandler("symbols", repo.ListSymbols)
}

func listHandler(name string, list func(ctx context.Context) ([]string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values, err := list(r.Context())
		if err != nil {
			logger.WithError(err).WithField("list", name).Error("failed to list values")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if values == nil {
			values = []string{}
		}
		writeJSON(w, http.StatusOK, values)
	}
}
