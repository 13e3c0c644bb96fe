package core

import "strings"

// Partition names, usable as pseudo-regions for global services.
const (
	PartitionAWS      = "aws"
	PartitionAWSCN    = "aws-cn"
	PartitionAWSUSGov = "aws-us-gov"
)

// standardRegions is the set of region names accepted by default.
// It mirrors the commercial, China and GovCloud partitions.
var standardRegions = []string{
	"af-south-1",
	"ap-east-1",
	"ap-northeast-1",
	"ap-northeast-2",
	"ap-northeast-3",
	"ap-south-1",
	"ap-south-2",
	"ap-southeast-1",
	"ap-southeast-2",
	"ap-southeast-3",
	"ap-southeast-4",
	"ca-central-1",
	"ca-west-1",
	"eu-central-1",
	"eu-central-2",
	"eu-north-1",
	"eu-south-1",
	"eu-south-2",
	"eu-west-1",
	"eu-west-2",
	"eu-west-3",
	"il-central-1",
	"me-central-1",
	"me-south-1",
	"sa-east-1",
	"us-east-1",
	"us-east-2",
	"us-west-1",
	"us-west-2",
	"cn-north-1",
	"cn-northwest-1",
	"us-gov-east-1",
	"us-gov-west-1",
}

// Partition returns the partition name a region belongs to.
func Partition(region string) string {
	switch {
	case strings.HasPrefix(region, "cn-"):
		return PartitionAWSCN
	case strings.HasPrefix(region, "us-gov-"):
		return PartitionAWSUSGov
	default:
		return PartitionAWS
	}
}

// ARN builds a resource name for the given service, scope and suffix,
// deriving the partition from the region.
func ARN(service, region, accountID, suffix string) string {
	return "arn:" + Partition(region) + ":" + service + ":" + region + ":" + accountID + ":" + suffix
}
