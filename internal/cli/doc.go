// Package cli реализует инструмент командной строки Mentor.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с Mentor API.
// Работает через HTTP, не импортирует внутренние пакеты системы.
//
// ## Client
//
// HTTP-клиент для Mentor API. Инкапсулирует HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	resp, err := client.Assist(cli.AssistRequest{Text: "Help me study graphs"})
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
//
// ## Commands
//
//   - assist TEXT [--student S] [--document FILE] [--async]
//   - requests: list, get
//   - quiz evaluate FILE [ANSWER...] [--student S]
//
// Команды создаются фабричными функциями (NewAssistCmd, NewRequestsCmd, NewQuizCmd),
// принимающими clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
