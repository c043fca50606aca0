package view

import (
	"errors"
	"fmt"
)

// Messages is the text catalog for one UI locale.
type Messages struct {
	Lang       string
	DateLayout string

	Title              string
	FetchDatesLabel    string
	FetchDynamicsLabel string
	FetchResultsLabel  string

	DatesSection       string
	DynamicsSection    string
	ResultsSection     string
	LimitLabel         string
	StartDateLabel     string
	EndDateLabel       string
	OilIDLabel         string
	DeliveryTypeLabel  string
	DeliveryBasisLabel string

	DatesHeading    string // %d = number of dates
	DynamicsHeading string // %d = number of records
	ResultsHeading  string // %d = number of records
	Columns         [7]string

	DatesFailed  string // %s = error text
	DataFailed   string // %s = error text
	HTTPStatus   string // %d = status code
	MissingDates string
	NoResults    string
	InvalidDate  string
}

var catalogs = map[string]Messages{
	"ru": {
		Lang:               "ru",
		DateLayout:         "02.01.2006",
		Title:              "Результаты торгов Spimex",
		FetchDatesLabel:    "Получить даты",
		FetchDynamicsLabel: "Получить динамику",
		FetchResultsLabel:  "Получить результаты",
		DatesSection:       "Последние даты торгов",
		DynamicsSection:    "Динамика торгов",
		ResultsSection:     "Последние результаты торгов",
		LimitLabel:         "Количество",
		StartDateLabel:     "Дата начала",
		EndDateLabel:       "Дата окончания",
		OilIDLabel:         "Oil ID",
		DeliveryTypeLabel:  "Тип поставки",
		DeliveryBasisLabel: "Базис поставки",
		DatesHeading:       "Последние даты торгов (%d):",
		DynamicsHeading:    "Результаты (%d записей):",
		ResultsHeading:     "Последние результаты (%d записей):",
		Columns:            [7]string{"Дата", "Oil ID", "Тип поставки", "Базис поставки", "Объём", "Сумма", "Кол-во"},
		DatesFailed:        "Ошибка отображения дат: %s",
		DataFailed:         "Ошибка отображения данных: %s",
		HTTPStatus:         "Ошибка HTTP! Статус: %d",
		MissingDates:       "Выберите начальную и конечную даты",
		NoResults:          "Не найдено результатов по заданным критериям",
		InvalidDate:        "Invalid Date",
	},
	"en": {
		Lang:               "en",
		DateLayout:         "1/2/2006",
		Title:              "Spimex trading results",
		FetchDatesLabel:    "Fetch dates",
		FetchDynamicsLabel: "Fetch dynamics",
		FetchResultsLabel:  "Fetch results",
		DatesSection:       "Last trading dates",
		DynamicsSection:    "Trading dynamics",
		ResultsSection:     "Recent trading results",
		LimitLabel:         "Limit",
		StartDateLabel:     "Start date",
		EndDateLabel:       "End date",
		OilIDLabel:         "Oil ID",
		DeliveryTypeLabel:  "Delivery type",
		DeliveryBasisLabel: "Delivery basis",
		DatesHeading:       "Last %d trading dates:",
		DynamicsHeading:    "Results (%d records):",
		ResultsHeading:     "Recent Results (%d records):",
		Columns:            [7]string{"Date", "Oil ID", "Delivery Type", "Delivery Basis", "Volume", "Total", "Count"},
		DatesFailed:        "Error displaying dates: %s",
		DataFailed:         "Error displaying data: %s",
		HTTPStatus:         "HTTP error! Status: %d",
		MissingDates:       "Select start and end dates",
		NoResults:          "No results found for the given criteria",
		InvalidDate:        "Invalid Date",
	},
}

// MessagesFor returns the catalog for lang, defaulting to Russian.
func MessagesFor(lang string) Messages {
	if m, ok := catalogs[lang]; ok {
		return m
	}
	return catalogs["ru"]
}

// ErrorText renders err for an error banner.
func (m Messages) ErrorText(err error) string {
	var he *HTTPError
	if errors.As(err, &he) {
		return fmt.Sprintf(m.HTTPStatus, he.Status)
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}
