package efs

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/asad/sandstack/internal/core"
	"github.com/asad/sandstack/internal/tagging"
)

// File-system life-cycle states. The emulator creates file systems directly
// in the available state; it never models the creating/deleting transitions.
const (
	LifeCycleAvailable = "available"
)

// LifecyclePolicy is one entry of a file system's lifecycle configuration.
type LifecyclePolicy struct {
	TransitionToIA                  string `json:"TransitionToIA,omitempty"`
	TransitionToPrimaryStorageClass string `json:"TransitionToPrimaryStorageClass,omitempty"`
	TransitionToArchive             string `json:"TransitionToArchive,omitempty"`
}

// FileSystem is one emulated elastic file system.
type FileSystem struct {
	ID                string
	ARN               string
	CreationToken     string
	CreationTime      time.Time
	LifeCycleState    string
	OwnerID           string
	PerformanceMode   string
	Encrypted         bool
	LifecyclePolicies []LifecyclePolicy
}

// newFileSystemID derives a synthetic identifier in the fs-xxxxxxxx shape.
func newFileSystemID() string {
	return fmt.Sprintf("fs-%08x", rand.Uint32())
}

func newFileSystem(accountID, region string, in *createFileSystemInput) *FileSystem {
	id := newFileSystemID()
	performanceMode := in.PerformanceMode
	if performanceMode == "" {
		performanceMode = "generalPurpose"
	}
	return &FileSystem{
		ID:                id,
		ARN:               core.ARN("elasticfilesystem", region, accountID, "file-system/"+id),
		CreationToken:     in.CreationToken,
		CreationTime:      time.Now().UTC(),
		LifeCycleState:    LifeCycleAvailable,
		OwnerID:           accountID,
		PerformanceMode:   performanceMode,
		Encrypted:         in.Encrypted,
		LifecyclePolicies: []LifecyclePolicy{},
	}
}

type sizeInBytes struct {
	Value     int64 `json:"Value"`
	Timestamp int64 `json:"Timestamp"`
}

// fileSystemDescription is the external-facing representation.
type fileSystemDescription struct {
	OwnerId              string        `json:"OwnerId"`
	CreationToken        string        `json:"CreationToken"`
	FileSystemId         string        `json:"FileSystemId"`
	FileSystemArn        string        `json:"FileSystemArn"`
	CreationTime         int64         `json:"CreationTime"`
	LifeCycleState       string        `json:"LifeCycleState"`
	NumberOfMountTargets int           `json:"NumberOfMountTargets"`
	SizeInBytes          sizeInBytes   `json:"SizeInBytes"`
	PerformanceMode      string        `json:"PerformanceMode"`
	Encrypted            bool          `json:"Encrypted"`
	Tags                 []tagging.Tag `json:"Tags"`
}

func (fs *FileSystem) describe(tags []tagging.Tag) fileSystemDescription {
	return fileSystemDescription{
		OwnerId:              fs.OwnerID,
		CreationToken:        fs.CreationToken,
		FileSystemId:         fs.ID,
		FileSystemArn:        fs.ARN,
		CreationTime:         fs.CreationTime.Unix(),
		LifeCycleState:       fs.LifeCycleState,
		NumberOfMountTargets: 0,
		SizeInBytes:          sizeInBytes{Value: 0, Timestamp: fs.CreationTime.Unix()},
		PerformanceMode:      fs.PerformanceMode,
		Encrypted:            fs.Encrypted,
		Tags:                 tags,
	}
}
