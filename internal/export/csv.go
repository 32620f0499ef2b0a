// Package export renders checklists for download.
package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"checkclient/internal/checklist"
)

type Exporter interface {
	Export(ctx context.Context, w io.Writer, items []checklist.Checklist) error
}

// CSV writes one row per checklist with a fixed header.
type CSV struct{}

var csvHeader = []string{
	"id", "clientName", "clientEmail", "serviceType", "status",
	"publicToken", "fields", "createdAt", "updatedAt", "submittedAt",
}

func (CSV) Export(_ context.Context, w io.Writer, items []checklist.Checklist) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, c := range items {
		submittedAt := ""
		if c.Responses != nil {
			submittedAt = c.Responses.SubmittedAt.Format(time.RFC3339)
		}
		row := []string{
			c.ID,
			c.ClientName,
			c.ClientEmail,
			c.ServiceType,
			string(c.Status),
			c.PublicToken,
			strconv.Itoa(len(c.Fields)),
			c.CreatedAt.Format(time.RFC3339),
			c.UpdatedAt.Format(time.RFC3339),
			submittedAt,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
