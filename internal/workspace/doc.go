// Package workspace manages the staging directory for one compile
// invocation: destroying and rebuilding it while preserving the installed
// theme cache, and guarding configured destinations against clobbering the
// source tree or the workspace layout itself.
//
// The theme cache preserve-through-temp pattern in Cleanup is not
// crash-safe: a failure between workspace removal and cache restoration
// loses the cache. That matches the designed behavior; re-installing themes
// on the next run is the recovery path.
package workspace
