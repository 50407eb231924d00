package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type contextKey string

const hostClaimsKey contextKey = "host_claims"

// gRPC methods reachable without a host token
var publicGRPCPrefixes = []string{
	"/grpc.health.v1.Health/",
	"/grpc.reflection.",
}

// HostClaims are the claims of a token minted by the commerce host
type HostClaims struct {
	jwt.RegisteredClaims
}

// HostAuth verifies HS256 tokens issued by the commerce host on both the
// HTTP and gRPC surfaces. With an empty secret every request is let through.
type HostAuth struct {
	secret   []byte
	audience string
	logger   *zap.Logger
}

// NewHostAuth creates host authentication. audience is optional.
func NewHostAuth(secret []byte, audience string, logger *zap.Logger) *HostAuth {
	if len(secret) == 0 {
		logger.Warn("Host JWT secret not configured, processor endpoints are unauthenticated")
	}
	return &HostAuth{
		secret:   secret,
		audience: audience,
		logger:   logger,
	}
}

// Enabled reports whether tokens are checked
func (a *HostAuth) Enabled() bool {
	return len(a.secret) > 0
}

// Middleware wraps an HTTP handler with bearer token verification
func (a *HostAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		tokenString, err := bearerToken(r.Header.Get("Authorization"))
		if err != nil {
			writeUnauthorized(w, err.Error())
			return
		}

		claims, err := a.verifyToken(tokenString)
		if err != nil {
			a.logger.Warn("host token verification failed",
				zap.Error(err),
				zap.String("path", r.URL.Path))
			writeUnauthorized(w, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), hostClaimsKey, claims)))
	})
}

// UnaryServerInterceptor returns a gRPC unary server interceptor for host auth
func (a *HostAuth) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if !a.Enabled() || isPublicMethod(info.FullMethod) {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		authHeaders := md.Get("authorization")
		if len(authHeaders) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization header")
		}

		tokenString, err := bearerToken(authHeaders[0])
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		claims, err := a.verifyToken(tokenString)
		if err != nil {
			a.logger.Warn("host token verification failed",
				zap.Error(err),
				zap.String("method", info.FullMethod))
			return nil, status.Error(codes.Unauthenticated, fmt.Sprintf("invalid token: %v", err))
		}

		a.logger.Debug("host token authenticated",
			zap.String("subject", claims.Subject),
			zap.String("issuer", claims.Issuer))

		return handler(context.WithValue(ctx, hostClaimsKey, claims), req)
	}
}

func (a *HostAuth) verifyToken(tokenString string) (*HostClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if a.audience != "" {
		opts = append(opts, jwt.WithAudience(a.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &HostClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return a.secret, nil
		}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*HostClaims)
	if !ok || !token.Valid {
		return nil, errors.New("token is not valid")
	}
	return claims, nil
}

// HostClaimsFromContext returns the verified host claims, if any
func HostClaimsFromContext(ctx context.Context) (*HostClaims, bool) {
	claims, ok := ctx.Value(hostClaimsKey).(*HostClaims)
	return claims, ok
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return "", errors.New("invalid authorization format: expected 'Bearer <token>'")
	}
	return token, nil
}

func isPublicMethod(fullMethod string) bool {
	for _, prefix := range publicGRPCPrefixes {
		if strings.HasPrefix(fullMethod, prefix) {
			return true
		}
	}
	return false
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="paytr-processor"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = fmt.Fprintf(w, `{"error":%q,"code":"UNAUTHENTICATED"}`, message)
}
