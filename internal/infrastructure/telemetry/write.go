package telemetry

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteUsage records a filament usage deduction.
//
// This is the primary telemetry point: one row per successful usage
// event, tagged by spool and tray so dashboards can chart consumption
// per printer and per spool. The write is non-blocking; data is batched
// and sent asynchronously.
//
// Parameters:
//   - spoolID: Spoolman spool identifier
//   - trayKey: tray the filament was consumed from
//   - deducted: grams deducted by this event
//   - remaining: projected remaining weight after the deduction
func (c *Client) WriteUsage(spoolID int, trayKey string, deducted, remaining float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"filament_usage",
		map[string]string{
			"spool_id": strconv.Itoa(spoolID),
			"tray_key": trayKey,
		},
		map[string]interface{}{
			"deducted_g":  deducted,
			"remaining_g": remaining,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
