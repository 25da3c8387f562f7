// Package types defines the shared domain types for smart-city deployment
// assessments: the physical zone under evaluation, strategic goals and
// constraints, proposed hardware solutions, the project brief fed to the
// risk specialists, and the governed decision vocabulary.
package types
