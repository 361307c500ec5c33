/*
	partition detects the position of an application instance within a
	cluster of replicas. Only the instance assigned to partition 0 runs the
	scheduled computations; the remaining replicas stay idle.
*/

package partition

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

var (
	// The following functions are overridden in tests.
	getHostname = os.Hostname
	lookupSRV   = net.LookupSRV

	// ErrNoPartitionDataAvailableYet is returned by the SRV-aware
	// partition detector to indicate that SRV records for this target
	// application are not yet available.
	ErrNoPartitionDataAvailableYet = errors.New("no partition data available yet")
)

// Detector is implemented by types that assign an application instance in a
// cluster to a partition.
type Detector interface {
	// PartitionInfo returns the partition of this instance and the total
	// number of partitions.
	PartitionInfo() (int, int, error)
}

// Fixed is a Detector that always returns the same partition information.
// It is meant for single instance deployments and tests.
type Fixed struct {
	Partition       int
	NumOfPartitions int
}

// PartitionInfo implements Detector.
func (d Fixed) PartitionInfo() (int, int, error) {
	return d.Partition, d.NumOfPartitions, nil
}

// SRVRecord detects the number of partitions by performing a SRV query and
// counting the number of results.
type SRVRecord struct {
	// Headless service name.
	srvName string
}

// DetectFromSRVRecords returns a Detector implementation that extracts the
// current partition from the host name suffix (e.g. pregel-2) and detects
// the total number of partitions by counting the SRV records of srvName.
//
// This detector is meant to be used in conjunction with a Stateful Set in a
// kubernetes environment.
func DetectFromSRVRecords(srvName string) SRVRecord {
	return SRVRecord{srvName: srvName}
}

// PartitionInfo implements Detector.
func (det SRVRecord) PartitionInfo() (int, int, error) {
	hostname, err := getHostname()
	if err != nil {
		return -1, -1, fmt.Errorf("partition detector: unable to detect host name: %w", err)
	}

	tokens := strings.Split(hostname, "-")
	partition, err := strconv.ParseInt(tokens[len(tokens)-1], 10, 32)
	if err != nil {
		return -1, -1, errors.New(
			"partition detector: unable to extract partition number from the host name suffix",
		)
	}

	_, addrs, err := lookupSRV("", "", det.srvName)
	if err != nil {
		return -1, -1, ErrNoPartitionDataAvailableYet
	}

	return int(partition), len(addrs), nil
}

// FromMode returns a Detector for the provided mode. Supported modes are
// "single" and "dns=HEADLESS_SERVICE_NAME".
func FromMode(mode string) (Detector, error) {
	switch {
	case mode == "" || mode == "single":
		return Fixed{Partition: 0, NumOfPartitions: 1}, nil
	case strings.HasPrefix(mode, "dns="):
		return DetectFromSRVRecords(strings.TrimPrefix(mode, "dns=")), nil
	default:
		return nil, fmt.Errorf("unsupported partition detector mode: %q", mode)
	}
}
