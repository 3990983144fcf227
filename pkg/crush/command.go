// Copyright 2025 The cephcrush Authors
// SPDX-License-Identifier: Apache-2.0

package crush

import "strings"

// DefaultProgram is the cluster management binary commands are issued to.
const DefaultProgram = "ceph"

// DefaultCluster is the cluster name used when none is given.
const DefaultCluster = "ceph"

// Subcommand is an "osd crush" subcommand.
type Subcommand string

const (
	SubcommandAddBucket Subcommand = "add-bucket"
	SubcommandMove      Subcommand = "move"
)

// Command is a single CRUSH administrative command. Commands are values and
// are never modified after construction.
type Command struct {
	Cluster    string
	Subcommand Subcommand
	// Bucket is the bucket being created or moved.
	Bucket string
	// Level is the bucket type for add-bucket, or the parent type for move.
	Level Level
	// Parent is the destination bucket of a move.
	Parent string
}

// AddBucket returns the command creating bucket name of type level.
func AddBucket(cluster, name string, level Level) Command {
	return Command{
		Cluster:    cluster,
		Subcommand: SubcommandAddBucket,
		Bucket:     name,
		Level:      level,
	}
}

// Move returns the command nesting child under the parent bucket of type
// parentLevel.
func Move(cluster, child string, parentLevel Level, parent string) Command {
	return Command{
		Cluster:    cluster,
		Subcommand: SubcommandMove,
		Bucket:     child,
		Level:      parentLevel,
		Parent:     parent,
	}
}

// Target is the final argument of the command: the bucket type for
// add-bucket, "type=name" for move.
func (c Command) Target() string {
	if c.Subcommand == SubcommandMove {
		return c.Level.String() + "=" + c.Parent
	}
	return c.Level.String()
}

// Args returns the argument vector for program. Every token is a separate
// argument and nothing is shell-interpreted.
func (c Command) Args(program string) []string {
	if program == "" {
		program = DefaultProgram
	}
	return []string{
		program,
		"--cluster",
		c.Cluster,
		"osd",
		"crush",
		string(c.Subcommand),
		c.Bucket,
		c.Target(),
	}
}

// String renders the subcommand and its operands, e.g. "move node1 rack=rackA".
func (c Command) String() string {
	return strings.Join([]string{string(c.Subcommand), c.Bucket, c.Target()}, " ")
}
