// Package domain models the airborne-navigation quicklook data.
//
// # Data Sources
//
// The navigation dataset is a processed NetCDF file produced from the
// aircraft's inertial navigation system and the downward-looking KT-19
// pyrometer: one record per time step carrying altitude, pitch, roll,
// KT-19 brightness temperature, and the WGS-84 position. The sea-ice
// concentration (SIC) dataset is a separately gridded satellite product
// (merged MODIS/AMSR2 on a polar stereographic grid) with one
// concentration field per time step, valid range 0–100 percent.
//
// # Conventions
//
// Timestamps are UTC. A "day" is the calendar-day string YYYY-MM-DD; a
// day slice covers [00:00:00, 23:59:59.999999999] of that day. The
// derived hour-of-day attribute is the fractional UTC hour
// (h + m/60 + s/3600), computed once at load and used as the color
// dimension across all views.
//
// Missing or invalid measurements are NaN. Aggregations (coarsening
// blocks, grid time-means) average the valid values of a block or cell
// and yield NaN only when there are none.
//
// # Immutability
//
// FlightTrack and IceGrid are loaded once and never mutated. Every view
// operation (day slice, coarsen, range filter, time mean) returns a
// fresh value computed from the source arrays, so views can be rebuilt
// from scratch on every interaction.
package domain
