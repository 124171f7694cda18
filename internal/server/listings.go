package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"listing-tracker/internal/assemble"
	"listing-tracker/internal/entity"
	"listing-tracker/internal/repository"
)

// Exporter produces the XLSX download.
type Exporter interface {
	ExportListingsXLSX(ctx context.Context) ([]byte, error)
}

type ListingHandler struct {
	listings repository.ListingRepository
	exporter Exporter
	log      *zap.SugaredLogger
}

func NewListingHandler(listings repository.ListingRepository, exporter Exporter, log *zap.SugaredLogger) *ListingHandler {
	return &ListingHandler{listings: listings, exporter: exporter, log: log}
}

func (h *ListingHandler) List(c *gin.Context) {
	listings, err := h.listings.List(c.Request.Context())
	if err != nil {
		status, code := statusFor(err)
		RespondError(c, status, code, err)
		return
	}
	if listings == nil {
		listings = []*entity.Listing{}
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

func (h *ListingHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	listing, err := h.listings.GetByID(c.Request.Context(), id)
	if err != nil {
		status, code := statusFor(err)
		RespondError(c, status, code, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing": listing})
}

// listingPatch carries user edits. Absent fields are left untouched.
type listingPatch struct {
	Price           *string  `json:"price"`
	Address         *string  `json:"address"`
	Region          *string  `json:"region"`
	Beds            *string  `json:"beds"`
	Baths           *string  `json:"baths"`
	Sqft            *string  `json:"sqft"`
	SqftLot         *int64   `json:"sqftLot"`
	YearBuilt       *string  `json:"yearBuilt"`
	DaysOnMarket    *string  `json:"daysOnMarket"`
	ARMLS           *string  `json:"armls"`
	Description     *string  `json:"description"`
	Images          []string `json:"images"`
	PriceTrend      *string  `json:"priceTrend"`
	PriceDropAmount *string  `json:"priceDropAmount"`
	OriginalPrice   *string  `json:"originalPrice"`
	Reviewed        *bool    `json:"reviewed"`
}

func (p *listingPatch) apply(l *entity.Listing) {
	if p.Price != nil {
		l.Price = p.Price
		l.PriceValue = assemble.ParsePrice(l.Price)
	}
	if p.Address != nil {
		l.Address = p.Address
	}
	if p.Region != nil {
		l.Region = p.Region
	}
	if p.Beds != nil {
		l.Beds = p.Beds
	}
	if p.Baths != nil {
		l.Baths = p.Baths
	}
	if p.Sqft != nil {
		l.Sqft = p.Sqft
	}
	if p.SqftLot != nil {
		l.SqftLot = p.SqftLot
	}
	if p.YearBuilt != nil {
		l.YearBuilt = p.YearBuilt
	}
	if p.DaysOnMarket != nil {
		l.DaysOnMarket = p.DaysOnMarket
	}
	if p.ARMLS != nil {
		l.ARMLS = p.ARMLS
	}
	if p.Description != nil {
		l.Description = p.Description
	}
	if p.Images != nil {
		l.Images = p.Images
	}
	if p.PriceTrend != nil {
		l.PriceTrend = p.PriceTrend
	}
	if p.PriceDropAmount != nil {
		l.PriceDropAmount = p.PriceDropAmount
	}
	if p.OriginalPrice != nil {
		l.OriginalPrice = p.OriginalPrice
	}
	if p.Reviewed != nil {
		l.Reviewed = *p.Reviewed
	}
	l.LastUpdated = time.Now().UnixMilli()
}

func (h *ListingHandler) Patch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var patch listingPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	listing, err := h.listings.GetByID(c.Request.Context(), id)
	if err != nil {
		status, code := statusFor(err)
		RespondError(c, status, code, err)
		return
	}
	patch.apply(listing)

	if err := h.listings.Update(c.Request.Context(), listing); err != nil {
		status, code := statusFor(err)
		RespondError(c, status, code, err)
		return
	}
	h.log.Infow("listing updated", "listing_id", id)
	c.JSON(http.StatusOK, gin.H{"listing": listing})
}

func (h *ListingHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := h.listings.Delete(c.Request.Context(), id); err != nil {
		status, code := statusFor(err)
		RespondError(c, status, code, err)
		return
	}
	h.log.Infow("listing deleted", "listing_id", id)
	c.Status(http.StatusNoContent)
}

func (h *ListingHandler) Export(c *gin.Context) {
	data, err := h.exporter.ExportListingsXLSX(c.Request.Context())
	if err != nil {
		status, code := statusFor(err)
		RespondError(c, status, code, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="listings.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
