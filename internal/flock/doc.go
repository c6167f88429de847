// Package flock serializes scout processes that share one snapshot file.
//
// Acquire polls for an exclusive lock on a sidecar ".lock" file until a
// deadline, so a 'scout serve' and a 'scout watch' never interleave a
// read-modify-write of the same snapshot:
//
//	f, err := flock.Acquire(ctx, path+constants.LockExt, constants.LockTimeout)
//	if err != nil {
//	    return err // errors.ErrLockTimeout when another process holds it
//	}
//	defer flock.Release(f)
package flock
