// Package casv1 holds the wire types and gRPC stubs of the remote cache.
package casv1

//go:generate protoc --proto_path=../.. --go_out=../.. --go_opt=paths=source_relative --go-grpc_out=../.. --go-grpc_opt=paths=source_relative cas/v1/cas.proto
