package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rohmanhakim/product-aggregator/internal/build"
	"github.com/rohmanhakim/product-aggregator/internal/catalog"
	"github.com/rohmanhakim/product-aggregator/internal/logger"
	"github.com/rohmanhakim/product-aggregator/internal/product"
	"go.uber.org/zap"
)

type ProductsResponse struct {
	Source   string           `json:"source,omitempty"`
	Query    string           `json:"query,omitempty"`
	Total    int              `json:"total"`
	Products []product.Record `json:"products"`
}

type SourcesResponse struct {
	Total   int                  `json:"total"`
	Sources []catalog.SourceInfo `json:"sources"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": build.FullVersion()})
}

func (s *Server) sources(c *gin.Context) {
	sources := s.catalog.Sources()
	c.JSON(http.StatusOK, SourcesResponse{Total: len(sources), Sources: sources})
}

func (s *Server) allProducts(c *gin.Context) {
	records, err := s.catalog.AllProducts(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newProductsResponse(records))
}

func (s *Server) productsBySource(c *gin.Context) {
	source := strings.ToLower(strings.TrimSpace(c.Param("source")))
	records, err := s.catalog.BySource(c.Request.Context(), source)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp := newProductsResponse(records)
	resp.Source = source
	c.JSON(http.StatusOK, resp)
}

func (s *Server) search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	records, err := s.catalog.Search(c.Request.Context(), query)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp := newProductsResponse(records)
	resp.Query = query
	c.JSON(http.StatusOK, resp)
}

// fail maps caller input errors to 400 and anything else to 500.
func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, catalog.ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing query"})
	case errors.Is(err, catalog.ErrUnknownSource):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unknown source"})
	default:
		logger.FromGin(c).Error("catalog request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func newProductsResponse(records []product.Record) ProductsResponse {
	if records == nil {
		records = []product.Record{}
	}
	return ProductsResponse{Total: len(records), Products: records}
}
