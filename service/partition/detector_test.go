package partition

import (
	"errors"
	"net"
	"os"
	"testing"

	check "gopkg.in/check.v1"
)

var _ = check.Suite(new(DetectorTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type DetectorTestSuite struct{}

func (s *DetectorTestSuite) SetUpTest(c *check.C) {
	getHostname = os.Hostname
	lookupSRV = net.LookupSRV
}

func (s *DetectorTestSuite) TearDownTest(c *check.C) {
	getHostname = os.Hostname
	lookupSRV = net.LookupSRV
}

func (s *DetectorTestSuite) TestDetectFromSRVRecords(c *check.C) {
	getHostname = func() (string, error) {
		return "pregel-1", nil
	}

	lookupSRV = func(service, proto, name string) (cname string, addrs []*net.SRV, err error) {
		c.Assert(service, check.Equals, "")
		c.Assert(proto, check.Equals, "")
		c.Assert(name, check.Equals, "pregel-headless")

		return "pregel-headless", make([]*net.SRV, 4), nil
	}

	det := DetectFromSRVRecords("pregel-headless")
	currPartition, numOfPartitions, err := det.PartitionInfo()

	c.Assert(err, check.IsNil)
	c.Assert(currPartition, check.Equals, 1)
	c.Assert(numOfPartitions, check.Equals, 4)
}

func (s *DetectorTestSuite) TestDetectFromSRVRecordsWithNoAvailableData(c *check.C) {
	getHostname = func() (string, error) {
		return "pregel-1", nil
	}

	lookupSRV = func(service, proto, name string) (cname string, addrs []*net.SRV, err error) {
		return "", nil, errors.New("host not found")
	}

	det := DetectFromSRVRecords("pregel-headless")
	_, _, err := det.PartitionInfo()
	c.Assert(errors.Is(err, ErrNoPartitionDataAvailableYet), check.Equals, true)
}

func (s *DetectorTestSuite) TestHostNameWithoutIndex(c *check.C) {
	getHostname = func() (string, error) {
		return "workstation", nil
	}

	_, _, err := DetectFromSRVRecords("pregel-headless").PartitionInfo()
	c.Assert(err, check.ErrorMatches, ".*unable to extract partition number.*")
}

func (s *DetectorTestSuite) TestFromMode(c *check.C) {
	det, err := FromMode("single")
	c.Assert(err, check.IsNil)
	c.Assert(det, check.Equals, Fixed{Partition: 0, NumOfPartitions: 1})

	det, err = FromMode("dns=pregel-headless")
	c.Assert(err, check.IsNil)
	c.Assert(det, check.Equals, SRVRecord{srvName: "pregel-headless"})

	_, err = FromMode("zookeeper")
	c.Assert(err, check.ErrorMatches, `unsupported partition detector mode: "zookeeper"`)
}
