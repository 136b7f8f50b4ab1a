// Package gateway は決済ゲートウェイのREST APIクライアントを提供する。
//
// 操作（apiOperation）ごとのリクエスト組み立て、注文・トランザクション・
// セッション・3DSecureIdのURL組み立て、リクエストボディの生成、
// セッション・3DS・Hosted Checkout・ブラウザ決済のレスポンス解析を扱う。
// 通信はpkg/httpclientを使い、Basic認証（merchant.<マーチャントID>）で行う。
package gateway
