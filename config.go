package ecdb

import "go.uber.org/zap"

// Config holds process-wide knobs for the database and pipeline.
var Config config = config{
	smallPartitionCapacity: 256,
	largePartitionCapacity: 1024,
	idRecycleLowWaterMark:  1024,
	maxWorlds:              32,
	arenaSize:              4096 * 1024,
	logger:                 zap.NewNop(),
}

type config struct {
	smallPartitionCapacity int
	largePartitionCapacity int
	idRecycleLowWaterMark  int
	maxWorlds              int
	arenaSize              int
	logger                 *zap.Logger
}

// SetPartitionCapacities overrides the small/large partition row capacities
// new tables are built with. Existing tables are unaffected.
func (c *config) SetPartitionCapacities(small, large int) {
	c.smallPartitionCapacity = small
	c.largePartitionCapacity = large
}

// SetIdRecycleLowWaterMark overrides how many freed indices accumulate in
// the id pool's recycle queue before the oldest is handed back out.
func (c *config) SetIdRecycleLowWaterMark(n int) {
	c.idRecycleLowWaterMark = n
}

// SetLogger installs the zap logger used for warning-level diagnostics
// (generation wrap, missing template, level components no longer
// registered). Level schema drift panics instead of logging.
func (c *config) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	c.logger = l
}

// Logger returns the currently configured logger.
func (c *config) Logger() *zap.Logger {
	return c.logger
}
