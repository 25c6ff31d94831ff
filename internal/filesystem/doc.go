/*
Package filesystem owns the on-disk side of the video library: the storage
layout, the private staging area, the atomic commit into permanent names, and
resilient stat/open for network mounts.

# Layout

Permanent videos are stored as "<hex-digest>.<ext>" under the video root and
previews as "<hex-digest>.gif" under the preview root. Uploads are first
written to the staging directory as "temp_<uuid>.<ext>". The staging directory
must share a filesystem with the video root; a commit across filesystems fails
with CrossDeviceError.

# Commit

CommitNoReplace moves a staged file to its permanent name and fails with
ErrTargetExists when the name is taken. On Linux this is a single
renameat2(RENAME_NOREPLACE) call; elsewhere, or where the filesystem does not
support the flag, it falls back to link(2) followed by removing the staged
name. Either way two commits of the same content cannot both succeed.

# Retry

StatWithRetry and OpenWithRetry retry ESTALE (stale NFS file handle) with
exponential backoff (defaults: 3 retries, 50ms initial, 500ms cap). Other
errors are returned immediately. Retries are counted per volume, labelled by
the package-level VolumeResolver.
*/
package filesystem
