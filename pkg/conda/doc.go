// Package conda is the Environment Backend: the only place condax talks to
// a conda-compatible executable.
//
// Backend is the capability the reconciliation core depends on. Conda
// implements it by shelling out through pkg/executor; tests substitute a
// fake. The package also provisions the executables themselves (conda for
// environment management, micromamba as the runner wrappers call) and
// parses conda match specs.
package conda
