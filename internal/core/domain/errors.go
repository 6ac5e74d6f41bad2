package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

var (
	// ErrNotFound is returned when a blob, tree or artifact is not present.
	ErrNotFound = zerr.New("not found")

	// ErrInvalidDigest is returned when a digest string or value is malformed.
	ErrInvalidDigest = zerr.New("invalid digest")

	// ErrDigestMismatch is returned when content does not hash to the expected digest.
	ErrDigestMismatch = zerr.New("digest mismatch")

	// ErrCorruptBlob is returned when a locally stored blob no longer matches its digest.
	ErrCorruptBlob = zerr.New("corrupt blob in local store")

	// ErrCorruptTree is returned when a directory node references a missing or unreadable child.
	ErrCorruptTree = zerr.New("corrupt tree")

	// ErrCorruptArtifact is returned when an artifact record cannot be decoded.
	ErrCorruptArtifact = zerr.New("corrupt artifact record")

	// ErrInvalidNode is returned when an in-memory tree cannot be serialized.
	ErrInvalidNode = zerr.New("invalid tree node")

	// ErrInvalidPath is returned when a tree path or entry name is not usable.
	ErrInvalidPath = zerr.New("invalid path")

	// ErrUnsupportedFileType is returned when capturing a file that is neither regular, directory nor symlink.
	ErrUnsupportedFileType = zerr.New("unsupported file type")

	// ErrSandboxEscape is returned when staging would write outside the sandbox root.
	ErrSandboxEscape = zerr.New("path escapes the sandbox root")

	// ErrIncompatibleOverlay is returned when staging places a directory over a file or the reverse.
	ErrIncompatibleOverlay = zerr.New("incompatible overlay")

	// ErrSymlinkLoop is returned when resolving a staged path follows too many symlinks.
	ErrSymlinkLoop = zerr.New("too many levels of symbolic links")

	// ErrSandboxCreateFailed is returned when the sandbox directory cannot be prepared.
	ErrSandboxCreateFailed = zerr.New("failed to create sandbox")

	// ErrCommandFailed is returned when a sandboxed command exits with a non-zero status.
	ErrCommandFailed = zerr.New("command failed")

	// ErrBuildFailed is returned when an element's build commands fail.
	ErrBuildFailed = zerr.New("build failed")

	// ErrCancelled is returned when work is interrupted before it completes.
	ErrCancelled = zerr.New("cancelled")

	// ErrBuildExecutionFailed is returned when at least one job of a run failed.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrRemoteUnavailable is returned for transient remote failures that may succeed on retry.
	ErrRemoteUnavailable = zerr.New("remote unavailable")

	// ErrRemoteNotConfigured is returned when a remote operation is requested without a remote.
	ErrRemoteNotConfigured = zerr.New("no remote configured")

	// ErrCyclicDependency is returned when the element graph contains a cycle.
	ErrCyclicDependency = zerr.New("cyclic dependency")

	// ErrMissingDependency is returned when an element references an undeclared element.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrElementAlreadyExists is returned when two elements share a name.
	ErrElementAlreadyExists = zerr.New("element already exists")

	// ErrElementNotFound is returned when a requested element is not in the graph.
	ErrElementNotFound = zerr.New("element not found")

	// ErrInvalidElementName is returned when an element name contains unusable characters.
	ErrInvalidElementName = zerr.New("invalid element name")

	// ErrInvalidDependencyType is returned for dependency types other than build, runtime or all.
	ErrInvalidDependencyType = zerr.New("invalid dependency type, expected 'build', 'runtime' or 'all'")

	// ErrUnknownKind is returned when an element uses a kind that is not registered.
	ErrUnknownKind = zerr.New("unknown element kind")

	// ErrInvalidElement is returned when an element's configuration is rejected by its kind.
	ErrInvalidElement = zerr.New("invalid element configuration")

	// ErrUnsupportedSource is returned for source kinds that cannot be fetched.
	ErrUnsupportedSource = zerr.New("unsupported source kind")

	// ErrSourceFetchFailed is returned when a source cannot be imported.
	ErrSourceFetchFailed = zerr.New("failed to fetch source")

	// ErrUnresolvedVariable is returned when a %{name} reference has no definition.
	ErrUnresolvedVariable = zerr.New("unresolved variable")

	// ErrCircularVariable is returned when variable definitions reference each other.
	ErrCircularVariable = zerr.New("circular variable reference")

	// ErrNoTargetsSpecified is returned when a command needs at least one element.
	ErrNoTargetsSpecified = zerr.New("no elements specified")

	// ErrInvalidJobTransition is returned on a job state change the state machine forbids.
	ErrInvalidJobTransition = zerr.New("invalid job state transition")

	// ErrStoreCreateFailed is returned when the store directories cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create store directory")

	// ErrStoreReadFailed is returned when an object cannot be read from the store.
	ErrStoreReadFailed = zerr.New("failed to read from store")

	// ErrStoreWriteFailed is returned when an object cannot be written to the store.
	ErrStoreWriteFailed = zerr.New("failed to write to store")

	// ErrStoreLockFailed is returned when the store lock file cannot be taken.
	ErrStoreLockFailed = zerr.New("failed to lock store")

	// ErrConfigReadFailed is returned when the project file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read project file")

	// ErrConfigParseFailed is returned when the project file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse project file")

	// ErrConfigNotFound is returned when no project file is found.
	ErrConfigNotFound = zerr.New("could not find " + ProjectFileName)

	// ErrInvalidConfig is returned when a project setting has an invalid value.
	ErrInvalidConfig = zerr.New("invalid project setting")
)

// StagingError describes why a layer could not be staged into a sandbox.
type StagingError struct {
	// Err is ErrSandboxEscape, ErrIncompatibleOverlay or ErrSymlinkLoop.
	Err error
	// Path is the sandbox path of the offending write, always absolute.
	Path string
	// Layer names the layer that was being staged.
	Layer string
	// Detail explains the conflict.
	Detail string
}

func (e *StagingError) Error() string {
	msg := e.Err.Error() + ": " + e.Path
	if e.Layer != "" {
		msg += " (staging " + e.Layer + ")"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap returns the sentinel kind of the failure.
func (e *StagingError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a transient failure worth retrying.
// Staging and build failures are permanent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCancelled) || errors.Is(err, ErrSandboxEscape) || errors.Is(err, ErrIncompatibleOverlay) {
		return false
	}
	return errors.Is(err, ErrRemoteUnavailable) || errors.Is(err, ErrDigestMismatch)
}
