package ingest

import (
	"time"
)

// FloodDetector spots topics with abnormally high publish rates: a
// per-topic sliding window of receipt times, alerting once the window
// holds threshold entries, with a per-topic cooldown between alerts.
// It is called only from the controller's processing loop and needs no
// locking.
type FloodDetector struct {
	window    time.Duration
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	counts    map[string][]time.Time
	lastAlert map[string]time.Time
}

func NewFloodDetector(window time.Duration, threshold int, cooldown time.Duration) *FloodDetector {
	return &FloodDetector{
		window:    window,
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
		counts:    make(map[string][]time.Time),
		lastAlert: make(map[string]time.Time),
	}
}

func (d *FloodDetector) Window() time.Duration {
	return d.window
}

// Record registers one message on the topic and reports whether this
// message pushed the topic over the threshold outside its cooldown.
// The returned count is the window occupancy at the time of the call.
func (d *FloodDetector) Record(topic string) (int, bool) {
	now := d.now()

	timestamps := append(d.counts[topic], now)

	cutoff := now.Add(-d.window)
	for len(timestamps) > 0 && timestamps[0].Before(cutoff) {
		timestamps = timestamps[1:]
	}
	d.counts[topic] = timestamps

	if len(timestamps) < d.threshold {
		return len(timestamps), false
	}

	if last, ok := d.lastAlert[topic]; ok && now.Sub(last) < d.cooldown {
		return len(timestamps), false
	}

	d.lastAlert[topic] = now
	return len(timestamps), true
}
