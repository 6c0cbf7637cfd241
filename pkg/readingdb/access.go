package readingdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AdilzhanB/Spilldataserver/pkg/types"
	"go.uber.org/zap"
)

// Save inserts one row and returns the reading with its assigned id.
func (s *Store) Save(ctx context.Context, reading types.SensorReading) (types.SensorReading, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now()
	}
	reading.Timestamp = types.NormalizeTimestamp(reading.Timestamp)

	flowDirection := ""
	if reading.FlowDirection != nil {
		flowDirection = *reading.FlowDirection
	}

	var id int64
	err := s.db.QueryRowContext(ctx, s.dialect.insertQuery,
		reading.DeviceID,
		nullFloat(reading.Temperature),
		nullFloat(reading.Humidity),
		nullFloat(reading.FlowRate),
		flowDirection,
		nullFloat(reading.Latitude),
		nullFloat(reading.Longitude),
		s.dialect.encodeTime(reading.Timestamp),
	).Scan(&id)
	if err != nil {
		return types.SensorReading{}, fmt.Errorf("%w: insert reading for %s: %v", types.ErrStorage, reading.DeviceID, err)
	}

	reading.ID = id
	s.log.Debug("reading stored", zap.String("device_id", reading.DeviceID), zap.Int64("id", id))
	return reading, nil
}

// Latest returns the newest row for deviceID, or nil when there is none.
func (s *Store) Latest(ctx context.Context, deviceID string) (*types.SensorReading, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		reading                                   types.SensorReading
		temperature, humidity, flowRate, lat, lon sql.NullFloat64
		flowDirection                             sql.NullString
		rawTimestamp                              any
	)
	err := s.db.QueryRowContext(ctx, s.dialect.latestQuery, deviceID).Scan(
		&reading.ID,
		&reading.DeviceID,
		&temperature,
		&humidity,
		&flowRate,
		&flowDirection,
		&lat,
		&lon,
		&rawTimestamp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query latest for %s: %v", types.ErrStorage, deviceID, err)
	}

	reading.Timestamp, err = s.dialect.decodeTime(rawTimestamp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}
	reading.Temperature = floatPtr(temperature)
	reading.Humidity = floatPtr(humidity)
	reading.FlowRate = floatPtr(flowRate)
	reading.Latitude = floatPtr(lat)
	reading.Longitude = floatPtr(lon)
	// Empty string is how an absent direction is stored
	if flowDirection.Valid && flowDirection.String != "" {
		reading.FlowDirection = &flowDirection.String
	}
	return &reading, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
