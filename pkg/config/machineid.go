package config

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

const appID = "titan"

// ClientID derives a stable client id for this machine, falling back to
// fallback when the machine id isn't readable.
func ClientID(fallback string) string {
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		glog.Warningf("machine id: %v", err)
		return fallback
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return appID + "-" + id
}
