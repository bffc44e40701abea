// Package handler — export.go implements GET /export.
// Returns all trips as a flat table for the research backend.
// Supports content negotiation via ?format=csv (CSV) or default (JSON).
package handler

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmathew/travel-diary/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "trip_number", "status", "mode", "purpose", "purpose_detail",
	"origin_lat", "origin_lng", "origin_address",
	"dest_lat", "dest_lng", "dest_address",
	"start_time", "end_time", "duration_minutes",
	"total_travelers", "satisfaction_rating", "notes", "companions",
}

// GetExport handles GET /export.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	ownerID, err := s.resolveOwner(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := s.export.Export(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeCSV(w, rows)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// writeCSV streams the export as text/csv. Companion names within a row are
// pipe-separated to keep each trip on a single CSV line.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trips.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write(csvHeaders)
	for _, row := range rows {
		_ = cw.Write(csvRecord(row))
	}
	cw.Flush()
}

// csvRecord encodes one export row as a flat string slice.
// Nil pointers become empty fields.
func csvRecord(r domain.ExportRow) []string {
	return []string{
		r.TripID,
		strconv.Itoa(r.TripNumber),
		r.Status,
		r.Mode,
		r.Purpose,
		r.PurposeDetail,
		formatFloat(r.OriginLatitude),
		formatFloat(r.OriginLongitude),
		r.OriginAddress,
		formatOptionalFloat(r.DestLatitude),
		formatOptionalFloat(r.DestLongitude),
		r.DestAddress,
		r.StartTime.UTC().Format(time.RFC3339),
		formatOptionalTime(r.EndTime),
		formatOptionalInt(r.DurationMinutes),
		strconv.Itoa(r.TotalTravelers),
		formatOptionalInt(r.SatisfactionRating),
		r.Notes,
		strings.Join(r.Companions, "|"),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

func formatOptionalInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

// formatOptionalTime returns the RFC3339 representation of t, or "" if t is nil.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
