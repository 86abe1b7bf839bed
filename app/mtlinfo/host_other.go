//go:build !darwin && !linux

package main

func readHost(*HostInfo) {}
