package webutil

import (
	"log"
	"reflect"
	"strings"

	"github.com/go-playground/locales/ja"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ja_translations "github.com/go-playground/validator/v10/translations/ja"
)

// Validator はアプリケーション全体で共有されるバリデータインスタンスです。
var Validator *validator.Validate

// Trans はエラーメッセージを翻訳するためのトランスレータです。
var Trans ut.Translator

var fieldNameTranslations = map[string]string{
	"username":      "ユーザー名",
	"display_name":  "表示名",
	"email":         "メールアドレス",
	"password":      "パスワード",
	"avatar_url":    "アバターURL",
	"front":         "表面",
	"back":          "裏面",
	"playlist_name": "プレイリスト名",
	"new_name":      "新しいプレイリスト名",
	"recipient_ids": "共有先",
	"addressee_id":  "申請先ユーザー",
	"creator_id":    "作成者",
	"mode":          "学習モード",
	"card_id":       "カード",
	"is_correct":    "回答の正誤",
	"category":      "カテゴリ",
	"message":       "メッセージ",
	"page_url":      "ページURL",
	"token":         "トークン",
}

func translatedField(fe validator.FieldError) string {
	if name, ok := fieldNameTranslations[fe.Field()]; ok {
		return name
	}
	return fe.Field()
}

func init() {
	Validator = validator.New()

	// JSONタグからフィールド名を取得するように設定
	Validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	japanese := ja.New()
	uni := ut.New(japanese, japanese)
	var found bool
	Trans, found = uni.GetTranslator("ja")
	if !found {
		log.Fatal("translator not found")
	}

	if err := ja_translations.RegisterDefaultTranslations(Validator, Trans); err != nil {
		log.Fatal(err)
	}

	// フィールド名だけを差し込むメッセージ
	for tag, msg := range map[string]string{
		"required": "{0}は必須項目です。",
		"email":    "{0}は有効なメールアドレス形式ではありません。",
		"url":      "{0}は有効なURLではありません。",
		"alphanum": "{0}は英数字のみで入力してください。",
	} {
		registerTranslation(tag, msg, false)
	}
	// パラメータ付きのメッセージ
	registerTranslation("min", "{0}は{1}文字以上で入力してください。", true)
	registerTranslation("max", "{0}は{1}文字以下で入力してください。", true)
	registerTranslation("oneof", "{0}は[{1}]のいずれかを指定してください。", true)
}

func registerTranslation(tag, msg string, withParam bool) {
	err := Validator.RegisterTranslation(tag, Trans, func(ut ut.Translator) error {
		return ut.Add(tag, msg, true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		var t string
		if withParam {
			t, _ = ut.T(tag, translatedField(fe), fe.Param())
		} else {
			t, _ = ut.T(tag, translatedField(fe))
		}
		return t
	})
	if err != nil {
		log.Fatal(err)
	}
}
