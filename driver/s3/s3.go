package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/gobeaver/diskkit"
)

// API is the slice of the S3 client the adapter needs. *s3.Client satisfies
// it; tests substitute fakes to simulate pagination and error signals.
type API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Adapter provides an object-store implementation of diskkit.Disk over S3.
// The store has no real directories: "directories" are key prefixes ending
// in "/", with no independent existence guarantee.
type Adapter struct {
	name      string
	api       API
	presigner *s3.PresignClient
	bucket    string
	prefix    string
	ttl       time.Duration
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithPrefix scopes all keys under the given prefix.
func WithPrefix(prefix string) AdapterOption {
	return func(a *Adapter) {
		if prefix != "" && !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		a.prefix = prefix
	}
}

// WithTTL applies an expiry and Cache-Control max-age to every written
// object that does not set its own.
func WithTTL(ttl time.Duration) AdapterOption {
	return func(a *Adapter) {
		a.ttl = ttl
	}
}

// withName bakes the manager-resolved disk name into the adapter.
func withName(name string) AdapterOption {
	return func(a *Adapter) {
		a.name = name
	}
}

// New creates an S3-backed disk. When client is a real *s3.Client, presigned
// URL generation is available through the CanSignURL capability.
func New(client API, bucket string, options ...AdapterOption) *Adapter {
	adapter := &Adapter{
		api:    client,
		bucket: bucket,
	}
	if c, ok := client.(*s3.Client); ok {
		adapter.presigner = s3.NewPresignClient(c)
	}

	for _, option := range options {
		option(adapter)
	}

	return adapter
}

// Name implements diskkit.Disk.
func (a *Adapter) Name() string { return a.name }

// key maps a virtual path onto its object key. A trailing "/" on the input
// marks a pseudo-directory and survives the mapping.
func (a *Adapter) key(p string) string {
	k := path.Join(a.prefix, diskkit.CleanVirtual(p))
	if isDirPath(p) {
		k += "/"
	}
	return k
}

// isDirPath reports whether the virtual path names a pseudo-directory.
func isDirPath(p string) bool {
	return strings.HasSuffix(p, "/")
}

// Read implements diskkit.DiskReader.
func (a *Adapter) Read(ctx context.Context, p string) ([]byte, error) {
	rc, err := a.ReadStream(ctx, p)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// ReadStream implements diskkit.DiskReader.
func (a *Adapter) ReadStream(ctx context.Context, p string) (io.ReadCloser, error) {
	if isDirPath(p) {
		return nil, diskkit.WrapPathErr("read", p, diskkit.ErrNotAFile)
	}

	out, err := a.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(p)),
	})
	if err != nil {
		return nil, mapError("read", p, err)
	}
	return out.Body, nil
}

// Write implements diskkit.DiskWriter. Writing is refused when a
// directory-marker object with the equivalent name already exists; that
// probe is one extra HeadObject beyond the upload itself.
func (a *Adapter) Write(ctx context.Context, p string, content io.Reader, opts ...diskkit.Option) error {
	if isDirPath(p) {
		return diskkit.WrapPathErr("write", p, diskkit.ErrNotWritable)
	}

	key := a.key(p)
	if err := a.probeMarker(ctx, "write", p, key); err != nil {
		return err
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}

	options := diskkit.ApplyOptions(opts...)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}

	contentType := options.ContentType
	if contentType == "" {
		contentType = diskkit.GuessContentType(p, data)
	}
	input.ContentType = aws.String(contentType)

	if options.CacheControl != "" {
		input.CacheControl = aws.String(options.CacheControl)
	}
	if len(options.Metadata) > 0 {
		input.Metadata = options.Metadata
	}
	if options.Visibility == diskkit.Public {
		input.ACL = types.ObjectCannedACLPublicRead
	} else if options.Visibility == diskkit.Private {
		input.ACL = types.ObjectCannedACLPrivate
	}

	switch {
	case options.Expires != nil:
		input.Expires = options.Expires
	case a.ttl > 0:
		input.Expires = aws.Time(time.Now().Add(a.ttl))
		if input.CacheControl == nil {
			input.CacheControl = aws.String(fmt.Sprintf("max-age=%d", int(a.ttl.Seconds())))
		}
	}

	if _, err := a.api.PutObject(ctx, input); err != nil {
		return mapError("write", p, err)
	}
	return nil
}

// WriteStream implements diskkit.DiskWriter. The upload runs while the
// stream is written; Close blocks until the upload result is known.
func (a *Adapter) WriteStream(ctx context.Context, p string, opts ...diskkit.Option) (io.WriteCloser, error) {
	pr, pw := io.Pipe()
	done := make(chan error, 1)

	go func() {
		err := a.Write(ctx, p, pr, opts...)
		if err != nil {
			// Unblock the writer if the upload dies early.
			pr.CloseWithError(err)
		}
		done <- err
	}()

	return &uploadWriter{pw: pw, done: done}, nil
}

type uploadWriter struct {
	pw   *io.PipeWriter
	done chan error
}

func (w *uploadWriter) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

func (w *uploadWriter) Close() error {
	if err := w.pw.Close(); err != nil {
		return err
	}
	return <-w.done
}

// Stat implements diskkit.CanStat via a HeadObject call. A "/"-suffixed path
// stats the directory-marker object.
func (a *Adapter) Stat(ctx context.Context, p string) (diskkit.EntryInfo, error) {
	out, err := a.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(p)),
	})
	if err != nil {
		return diskkit.EntryInfo{}, mapError("stat", p, err)
	}

	info := diskkit.EntryInfo{
		Size: aws.ToInt64(out.ContentLength),
		Dir:  isDirPath(p),
	}
	if out.LastModified != nil {
		info.ModTime = *out.LastModified
	}
	return info, nil
}

// Delete implements diskkit.DiskWriter. The key is probed before deletion:
// S3's DeleteObject succeeds on absent keys, but the disk contract requires
// NotFound.
func (a *Adapter) Delete(ctx context.Context, p string) error {
	if isDirPath(p) {
		return diskkit.WrapPathErr("delete", p, diskkit.ErrNotAFile)
	}

	key := a.key(p)
	if _, err := a.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return mapError("delete", p, err)
	}

	if _, err := a.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return mapError("delete", p, err)
	}
	return nil
}

// List implements diskkit.DiskReader. It paginates the native
// prefix/delimiter listing until no continuation token remains, accumulating
// pseudo-directories (common prefixes) and files, deduplicating both groups
// across pages. Object stores have no authoritative notion of directory
// existence, so a nonexistent prefix yields an empty listing rather than an
// error.
func (a *Adapter) List(ctx context.Context, p string) ([]diskkit.Entry, error) {
	listPrefix := path.Join(a.prefix, diskkit.CleanVirtual(p))
	if listPrefix != "" {
		listPrefix += "/"
	}

	var (
		dirs, files []string
		seenDir     = map[string]bool{}
		seenFile    = map[string]bool{}
		token       *string
	)

	for {
		out, err := a.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(a.bucket),
			Prefix:            aws.String(listPrefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}

		for _, cp := range out.CommonPrefixes {
			name := strings.TrimPrefix(aws.ToString(cp.Prefix), listPrefix)
			if name == "" || seenDir[name] {
				continue
			}
			seenDir[name] = true
			dirs = append(dirs, name)
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if key == listPrefix {
				// The directory marker of the listed prefix itself.
				continue
			}
			name := strings.TrimPrefix(key, listPrefix)
			if name == "" || strings.HasSuffix(name, "/") || seenFile[name] {
				continue
			}
			seenFile[name] = true
			files = append(files, name)
		}

		if out.NextContinuationToken == nil {
			break
		}
		token = out.NextContinuationToken
	}

	entries := make([]diskkit.Entry, 0, len(dirs)+len(files))
	for _, name := range dirs {
		entries = append(entries, diskkit.Entry{Name: name, Type: diskkit.EntryTypeDirectory})
	}
	for _, name := range files {
		entries = append(entries, diskkit.Entry{Name: name, Type: diskkit.EntryTypeFile})
	}
	return entries, nil
}

// probeMarker fails the write when a directory-marker object shadows the
// target name.
func (a *Adapter) probeMarker(ctx context.Context, op, p, key string) error {
	_, err := a.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key + "/"),
	})
	if err == nil {
		return diskkit.WrapPathErr(op, p, diskkit.ErrNotWritable)
	}
	if isNotFound(err) {
		return nil
	}
	return err
}

// SignedURL implements diskkit.CanSignURL.
func (a *Adapter) SignedURL(ctx context.Context, p string, expires time.Duration) (string, error) {
	if a.presigner == nil {
		return "", diskkit.WrapPathErr("signed-url", p, diskkit.ErrNotSupported)
	}

	request, err := a.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(p)),
	}, func(o *s3.PresignOptions) {
		o.Expires = expires
	})
	if err != nil {
		return "", mapError("signed-url", p, err)
	}
	return request.URL, nil
}

// SignedUploadURL implements diskkit.CanSignURL.
func (a *Adapter) SignedUploadURL(ctx context.Context, p string, expires time.Duration) (string, error) {
	if a.presigner == nil {
		return "", diskkit.WrapPathErr("signed-upload-url", p, diskkit.ErrNotSupported)
	}

	request, err := a.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(p)),
	}, func(o *s3.PresignOptions) {
		o.Expires = expires
	})
	if err != nil {
		return "", mapError("signed-upload-url", p, err)
	}
	return request.URL, nil
}

// isNotFound reports whether an S3 error means the key does not exist.
func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}

// mapError translates S3 errors into the disk taxonomy; anything
// unrecognized propagates unchanged.
func mapError(op, p string, err error) error {
	if isNotFound(err) {
		return diskkit.WrapPathErr(op, p, diskkit.ErrNotFound)
	}

	if op == "write" {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "AccessDenied" {
			return diskkit.WrapPathErr(op, p, diskkit.ErrNotWritable)
		}
	}

	return err
}

// Ensure Adapter implements the disk contract
var (
	_ diskkit.Disk       = (*Adapter)(nil)
	_ diskkit.CanSignURL = (*Adapter)(nil)
	_ diskkit.CanStat    = (*Adapter)(nil)
)
