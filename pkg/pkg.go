// Package pkg is a collection of libraries used across monorel that do not depend on its internal packages.
package pkg
