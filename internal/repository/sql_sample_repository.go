package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sebasr/device-timeseries/internal/database"
	"github.com/sebasr/device-timeseries/internal/models"
)

// ErrDuplicateSample is returned when a sensor already has a sample at the timestamp
var ErrDuplicateSample = errors.New("duplicate sample")

// SQLSampleRepository implements SampleRepository on PostgreSQL or SQLite
type SQLSampleRepository struct {
	db *database.DB
}

// NewSQLSampleRepository creates a new SQL sample repository
func NewSQLSampleRepository(db *database.DB) *SQLSampleRepository {
	return &SQLSampleRepository{db: db}
}

const insertSampleQuery = `INSERT INTO ts_samples (sensor_id, ts, value) VALUES (?, ?, ?)`

// Insert stores a single sample
func (r *SQLSampleRepository) Insert(ctx context.Context, sample *models.Sample) error {
	_, err := r.db.ExecContext(ctx, r.db.Dialect.Rebind(insertSampleQuery),
		sample.SensorID, r.db.Dialect.TimeArg(sample.Timestamp), sample.Value)
	if err != nil {
		return r.insertError(sample, err)
	}

	return nil
}

// InsertBatch stores multiple samples in a single transaction.
// A duplicate anywhere in the batch rolls back the whole batch.
func (r *SQLSampleRepository) InsertBatch(ctx context.Context, samples []*models.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Rollback is safe to call even after Commit
	}()

	stmt, err := tx.PrepareContext(ctx, r.db.Dialect.Rebind(insertSampleQuery))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, sample := range samples {
		if _, err := stmt.ExecContext(ctx, sample.SensorID, r.db.Dialect.TimeArg(sample.Timestamp), sample.Value); err != nil {
			return r.insertError(sample, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *SQLSampleRepository) insertError(sample *models.Sample, err error) error {
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: sensor %d at %s", ErrDuplicateSample, sample.SensorID,
			sample.Timestamp.UTC().Truncate(time.Microsecond).Format(time.RFC3339Nano))
	}
	return fmt.Errorf("failed to insert sample: %w", err)
}

// RangeQuery retrieves samples of a sensor with start <= ts < end, newest first
func (r *SQLSampleRepository) RangeQuery(ctx context.Context, sensorID int64, start, end time.Time) ([]models.Sample, error) {
	query := `
		SELECT sensor_id, ts, value
		FROM ts_samples
		WHERE sensor_id = ? AND ts >= ? AND ts < ?
		ORDER BY ts DESC
	`

	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(query),
		sensorID, r.db.Dialect.TimeArg(start), r.db.Dialect.TimeArg(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query samples by range: %w", err)
	}
	defer rows.Close()

	samples := []models.Sample{}
	for rows.Next() {
		sample, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating samples: %w", err)
	}

	return samples, nil
}

// Latest retrieves the newest sample of each sensor in one query
func (r *SQLSampleRepository) Latest(ctx context.Context, sensorIDs []int64) (map[int64]models.Sample, error) {
	latest := make(map[int64]models.Sample, len(sensorIDs))
	if len(sensorIDs) == 0 {
		return latest, nil
	}

	query := `
		SELECT s.sensor_id, s.ts, s.value
		FROM ts_samples s
		JOIN (
			SELECT sensor_id, MAX(ts) AS ts
			FROM ts_samples
			WHERE ` + r.db.Dialect.AnyInt64("sensor_id") + `
			GROUP BY sensor_id
		) m ON s.sensor_id = m.sensor_id AND s.ts = m.ts
	`

	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(query), database.ListArg(r.db.Dialect, sensorIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query latest samples: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sample, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		latest[sample.SensorID] = sample
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating latest samples: %w", err)
	}

	return latest, nil
}

// chunkedSamples numbers the window's samples oldest first and assigns each
// to a group of `factor` consecutive samples. Parameters: factor, sensor, start, end.
const chunkedSamples = `
	WITH chunked AS (
		SELECT value, (ROW_NUMBER() OVER (ORDER BY ts) - 1) / ? AS grp
		FROM ts_samples
		WHERE sensor_id = ? AND ts >= ? AND ts < ?
	)`

var aggregateFuncs = map[models.AggregationType]string{
	models.AggregationSum:  "SUM",
	models.AggregationMean: "AVG",
	models.AggregationMin:  "MIN",
	models.AggregationMax:  "MAX",
}

// AggregateRange reduces chunks of samples inside the database
func (r *SQLSampleRepository) AggregateRange(ctx context.Context, q AggregateQuery) ([]AggregateRow, error) {
	if q.Factor < 1 {
		return nil, fmt.Errorf("aggregation factor must be at least 1, got %d", q.Factor)
	}
	if q.Limit <= 0 {
		return []AggregateRow{}, nil
	}

	var query string
	if q.Type == models.AggregationMedian {
		// Middle element, or mean of the two middle elements, of each group
		query = chunkedSamples + `,
		ordered AS (
			SELECT grp, value,
				ROW_NUMBER() OVER (PARTITION BY grp ORDER BY value) AS rn,
				COUNT(*) OVER (PARTITION BY grp) AS cnt
			FROM chunked
		)
		SELECT grp, AVG(value), MAX(cnt)
		FROM ordered
		WHERE rn IN ((cnt + 1) / 2, (cnt + 2) / 2)
		GROUP BY grp
		ORDER BY grp
		LIMIT ?`
	} else {
		fn, ok := aggregateFuncs[q.Type]
		if !ok {
			return nil, fmt.Errorf("unsupported aggregation type %q", q.Type)
		}
		query = chunkedSamples + fmt.Sprintf(`
		SELECT grp, %s(value), COUNT(*)
		FROM chunked
		GROUP BY grp
		ORDER BY grp
		LIMIT ?`, fn)
	}

	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(query),
		q.Factor, q.SensorID, r.db.Dialect.TimeArg(q.Start), r.db.Dialect.TimeArg(q.End), q.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate samples: %w", err)
	}
	defer rows.Close()

	result := []AggregateRow{}
	for rows.Next() {
		var row AggregateRow
		if err := rows.Scan(&row.Group, &row.Value, &row.Count); err != nil {
			return nil, fmt.Errorf("failed to scan aggregate row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating aggregate rows: %w", err)
	}

	return result, nil
}

func scanSample(rows *sql.Rows) (models.Sample, error) {
	var (
		sample models.Sample
		ts     database.Time
	)
	if err := rows.Scan(&sample.SensorID, &ts, &sample.Value); err != nil {
		return models.Sample{}, fmt.Errorf("failed to scan sample: %w", err)
	}
	sample.Timestamp = ts.Time
	return sample, nil
}
