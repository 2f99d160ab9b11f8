package config

import (
	"fmt"
	"strconv"

	"github.com/robotalks/titan.go/pkg/l0/shm"
)

// Well-known area indices.
const (
	AreaScratch      uint8 = 0
	AreaCredentials  uint8 = 1
	AreaConnection   uint8 = 2
	AreaUARTTx       uint8 = 3
	AreaLoRaTx       uint8 = 4
	AreaWaterLevel   uint8 = 5
	AreaUARTSchedule uint8 = 6
	AreaLoRaSchedule uint8 = 7
)

var areaNames = map[string]uint8{
	"scratch":       AreaScratch,
	"credentials":   AreaCredentials,
	"connection":    AreaConnection,
	"uart-tx":       AreaUARTTx,
	"lora-tx":       AreaLoRaTx,
	"water-level":   AreaWaterLevel,
	"uart-schedule": AreaUARTSchedule,
	"lora-schedule": AreaLoRaSchedule,
}

// AreaIndex looks up a well-known area by name.
func AreaIndex(name string) (uint8, bool) {
	index, ok := areaNames[name]
	return index, ok
}

// AreaName returns the well-known name of index, or the index itself.
func AreaName(index uint8) string {
	for name, i := range areaNames {
		if i == index {
			return name
		}
	}
	return strconv.Itoa(int(index))
}

// ParseArea accepts a well-known name or a decimal index.
func ParseArea(s string) (uint8, error) {
	if index, ok := areaNames[s]; ok {
		return index, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("unknown area %q", s)
	}
	if n < 0 || n >= shm.MaxAreas {
		return 0, fmt.Errorf("area %d out of range", n)
	}
	return uint8(n), nil
}
