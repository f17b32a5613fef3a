package receipt

import (
	"fmt"
	"strings"
)

// ConsentFileName is the download name of the consent document image.
const ConsentFileName = "consent.png"

const (
	consentWidth  = 800.0
	consentHeight = 600.0
	consentTitle  = "Согласие на обработку персональных данных"
)

// consentBody is the personal-data processing consent text with the
// subject's full name interpolated. Line breaks are fixed; the renderer
// does no wrapping.
const consentBody = `Я, %s, субъект персональных данных,
в соответствии с Федеральным законом № 152-ФЗ
«О персональных данных» свободно, в своей воле и в своем интересе, а также
подтверждая свою дееспособность, ДАЮ СОГЛАСИЕ обществу с ограниченной
ответственностью небанковской кредитной организации «Мани» (ИНН 7750005725,
ОГРН 1127711000031, город Москва, Садовническая улица, дом 82, строение 2,
https://money.ru/) (далее — НКО) на обработку моих персональных данных
на следующих условиях:

Цель обработки: рассмотрение вопроса о соответствии имеющимся вакансиям НКО,
проведение собеседований.
Обрабатываемые персональные данные относятся к категории «иные».

Я уведомлен, что НКО не осуществляет обработку специальных категорий
персональных данных и биометрических данных.

Состав обрабатываемых персональных данных: фамилия, имя, адрес электронной
почты, номер контактного телефона, а также в случае самостоятельного предоставления
субъектом данных: персональные данные, содержащиеся в резюме и/или портфолио
(в том числе ссылки на социальные сети, отчество, дата рождения, гражданство,
сведения о трудовой деятельности) и иные самостоятельно предоставленные данные.

Действия с персональными данными и способы их обработки: автоматизированная и
неавтоматизированная (смешанная) обработка с совершением НКО следующих действий:
сбор, запись, систематизация, накопление, хранение, уточнение (обновление, изменение),
извлечение, использование, удаление, уничтожение персональных данных.

Сроки обработки: согласие действует до достижения цели обработки персональных
данных или до момента отзыва согласия.

Передача третьим лицам: нет.
Отзыв согласия: Я осведомлен, что согласие может быть отозвано в любой момент
путем направления письменного заявления по адресу, указанному в начале текста настоящего
Согласия, или представителю по адресу dpo@money.ru.`

// ConsentLayout builds the 800x600 consent document: title at a fixed
// anchor, then the body advancing by a constant line height.
func ConsentLayout(fullName string) Layout {
	l := Layout{
		Width:      consentWidth,
		Height:     consentHeight,
		Background: white,
		Elements: []Element{
			Text{Value: consentTitle, X: 50, Y: 50, Size: 16, Color: black},
		},
	}
	y := 80.0
	for _, line := range strings.Split(fmt.Sprintf(consentBody, fullName), "\n") {
		l.Elements = append(l.Elements, Text{Value: line, X: 50, Y: y, Size: 16, Color: black})
		y += 20
	}
	return l
}

// ConsentPNG renders the consent document for download.
func (e *Exporter) ConsentPNG(fullName string) ([]byte, error) {
	pngBytes, err := e.renderer.PNG(ConsentLayout(fullName))
	if err != nil {
		return nil, fmt.Errorf("render consent: %w", err)
	}
	return pngBytes, nil
}
