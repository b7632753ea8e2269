// Package android holds housekeeping for the Android example projects:
// removing generated build output and gathering debug APKs in one folder.
package android
