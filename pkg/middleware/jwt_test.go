package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key"

func init() {
	gin.SetMode(gin.TestMode)
}

// newProtectedRouter はJWTAuthで保護されたエンドポイントを持つルーターを生成する。
func newProtectedRouter() *gin.Engine {
	router := gin.New()
	router.Use(JWTAuth(testSecret))
	router.GET("/admin", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	return router
}

// requestWithAuth はAuthorizationヘッダー付きでリクエストを実行する。
func requestWithAuth(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// signClaims は任意のクレームと署名方式でトークンを生成する。
func signClaims(t *testing.T, method jwt.SigningMethod, claims jwt.Claims, key any) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("トークンの署名に失敗: %v", err)
	}
	return signed
}

// TestGenerateJWT はGenerateJWTを検証する。
func TestGenerateJWT(t *testing.T) {
	t.Parallel()

	t.Run("クレームが設定されたトークンを生成できること", func(t *testing.T) {
		t.Parallel()

		tokenString, err := GenerateJWT(testSecret, "admin-1", "admin@example.com")
		if err != nil {
			t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
		}

		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
			return []byte(testSecret), nil
		})
		if err != nil || !token.Valid {
			t.Fatalf("トークンの検証に失敗: %v", err)
		}
		if claims.UserID != "admin-1" {
			t.Errorf("UserID = %q, want %q", claims.UserID, "admin-1")
		}
		if claims.Issuer != jwtIssuer {
			t.Errorf("Issuer = %q, want %q", claims.Issuer, jwtIssuer)
		}
		if token.Method.Alg() != "HS256" {
			t.Errorf("Alg = %q, want HS256", token.Method.Alg())
		}
		if d := time.Until(claims.ExpiresAt.Time); d < 23*time.Hour || d > 24*time.Hour {
			t.Errorf("有効期限までの時間 = %v, want 約24時間", d)
		}
	})
}

// TestJWTAuth はJWTAuthミドルウェアを検証する。
func TestJWTAuth(t *testing.T) {
	t.Parallel()

	t.Run("有効なトークンでリクエストが成功しユーザーIDが設定されること", func(t *testing.T) {
		t.Parallel()

		token, err := GenerateJWT(testSecret, "admin-1", "admin@example.com")
		if err != nil {
			t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
		}

		w := requestWithAuth(newProtectedRouter(), "Bearer "+token)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if w.Body.String() != `{"user_id":"admin-1"}` {
			t.Errorf("body = %s", w.Body.String())
		}
	})

	tests := []struct {
		name          string
		authorization func(t *testing.T) string
	}{
		{
			name:          "Authorizationヘッダーが無い場合401が返ること",
			authorization: func(*testing.T) string { return "" },
		},
		{
			name: "Bearer接頭辞が無い場合401が返ること",
			authorization: func(t *testing.T) string {
				token, _ := GenerateJWT(testSecret, "admin-1", "")
				return token
			},
		},
		{
			name:          "無効なトークンで401が返ること",
			authorization: func(*testing.T) string { return "Bearer not-a-token" },
		},
		{
			name: "異なるシークレットで署名されたトークンで401が返ること",
			authorization: func(t *testing.T) string {
				token, _ := GenerateJWT("other-secret", "admin-1", "")
				return "Bearer " + token
			},
		},
		{
			name: "期限切れトークンで401が返ること",
			authorization: func(t *testing.T) string {
				return "Bearer " + signClaims(t, jwt.SigningMethodHS256, JWTClaims{
					RegisteredClaims: jwt.RegisteredClaims{
						Issuer:    jwtIssuer,
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
					},
					UserID: "admin-1",
				}, []byte(testSecret))
			},
		},
		{
			name: "発行者が異なるトークンで401が返ること",
			authorization: func(t *testing.T) string {
				return "Bearer " + signClaims(t, jwt.SigningMethodHS256, JWTClaims{
					RegisteredClaims: jwt.RegisteredClaims{
						Issuer:    "someone-else",
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
					},
					UserID: "admin-1",
				}, []byte(testSecret))
			},
		},
		{
			name: "有効期限の無いトークンで401が返ること",
			authorization: func(t *testing.T) string {
				return "Bearer " + signClaims(t, jwt.SigningMethodHS256, JWTClaims{
					RegisteredClaims: jwt.RegisteredClaims{Issuer: jwtIssuer},
					UserID:           "admin-1",
				}, []byte(testSecret))
			},
		},
		{
			name: "HS256以外の署名方式で401が返ること",
			authorization: func(t *testing.T) string {
				return "Bearer " + signClaims(t, jwt.SigningMethodHS512, JWTClaims{
					RegisteredClaims: jwt.RegisteredClaims{
						Issuer:    jwtIssuer,
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
					},
					UserID: "admin-1",
				}, []byte(testSecret))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := requestWithAuth(newProtectedRouter(), tt.authorization(t))
			if w.Code != http.StatusUnauthorized {
				t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
			}
		})
	}
}

// TestGetUserID はGetUserIDを検証する。
func TestGetUserID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		set   bool
		want  string
	}{
		{name: "user_idが設定されている場合", value: "admin-1", set: true, want: "admin-1"},
		{name: "user_idが設定されていない場合", want: ""},
		{name: "user_idが文字列以外の場合", value: 42, set: true, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			if tt.set {
				c.Set("user_id", tt.value)
			}
			if got := GetUserID(c); got != tt.want {
				t.Errorf("GetUserID() = %q, want %q", got, tt.want)
			}
		})
	}
}
